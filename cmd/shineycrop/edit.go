package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/shineycrop/internal/appstate"
	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/render"
	"github.com/example/shineycrop/internal/source"
)

const loadTimeout = 30 * time.Second

type editCmd struct {
	*root
	fs         *flag.FlagSet
	file       string
	size       string
	constraint string
	view       string
	saveDir    string
	format     string
	quality    int
	focal      string

	editorSize geometry.Dimensions
	ratio      float64
	initView   editor.View
	outFormat  render.Format
	focalPoint *geometry.Point
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	e := &editCmd{root: r, fs: fs}
	fs.StringVar(&e.file, "file", "", "image file to edit")
	fs.StringVar(&e.size, "size", "1024x768", "editor area as WIDTHxHEIGHT")
	fs.StringVar(&e.constraint, "constraint", "", "aspect ratio preset or W:H ratio (free when empty)")
	fs.StringVar(&e.view, "view", "normal", "initial view: normal, crop or rotate")
	fs.StringVar(&e.saveDir, "save-dir", "", "directory for saved edits (default: config save_dir, then the image's directory)")
	fs.StringVar(&e.format, "format", "png", "export format: png, jpeg or webp")
	fs.IntVar(&e.quality, "quality", render.DefaultJPEGQuality, "JPEG quality")
	fs.StringVar(&e.focal, "focal", "", "initial focal point as X,Y offsets from the image centre")
	fs.Usage = usageFunc(e)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && fs.NArg() > 0 {
		e.file = fs.Arg(0)
	}
	if e.file == "" {
		return nil, &UsageError{of: e}
	}

	var err error
	if e.editorSize, err = parseDims(e.size); err != nil {
		return nil, fmt.Errorf("invalid -size: %w", err)
	}
	if r != nil && r.config != nil {
		if e.ratio, err = r.config.Constraint(e.constraint); err != nil {
			return nil, fmt.Errorf("invalid -constraint: %w", err)
		}
	}
	if e.initView, err = editor.ParseView(e.view); err != nil {
		return nil, fmt.Errorf("invalid -view: %w", err)
	}
	if e.outFormat, err = render.ParseFormat(e.format); err != nil {
		return nil, fmt.Errorf("invalid -format: %w", err)
	}
	if e.focal != "" {
		p, err := parsePoint(e.focal)
		if err != nil {
			return nil, fmt.Errorf("invalid -focal: %w", err)
		}
		e.focalPoint = &p
	}
	return e, nil
}

func (e *editCmd) Run() error {
	shell := appstate.NewShell()
	opts := []editor.Option{
		editor.WithSource(source.NewFileSource("")),
		editor.WithSettings(e.root.config.Editor.Settings()),
		editor.WithAnimator(shell),
		editor.WithDispatcher(shell),
		editor.WithEditorSize(e.editorSize.Width, e.editorSize.Height),
		editor.WithConstraint(e.ratio),
		editor.WithErrorHandler(func(err error) { log.Printf("edit %s: %v", e.file, err) }),
	}
	if e.focalPoint != nil {
		opts = append(opts, editor.WithInitialFocalPoint(e.focalPoint.X, e.focalPoint.Y))
	}
	ed := editor.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if err := ed.Load(ctx, e.file); err != nil {
		return fmt.Errorf("failed to open %s: %w", e.file, err)
	}
	if e.initView != editor.ViewNormal {
		if err := ed.ShowView(e.initView); err != nil {
			return fmt.Errorf("failed to show %s view: %w", e.view, err)
		}
	}

	file := e.file
	app := appstate.New(ed,
		appstate.WithShell(shell),
		appstate.WithTheme(e.root.activeTheme),
		appstate.WithOriginal(func() (image.Image, error) { return source.ReadFile(file) }),
		appstate.WithSaveDir(e.saveDirectory()),
		appstate.WithFormat(e.outFormat, e.quality),
		appstate.WithPresets(e.root.presets()),
		appstate.WithNotifier(e.root.notifier),
	)
	app.Run()
	return nil
}

func (e *editCmd) saveDirectory() string {
	if e.saveDir != "" {
		return e.saveDir
	}
	if e.root.config.SaveDir != "" {
		return e.root.config.SaveDir
	}
	return filepath.Dir(e.file)
}

// parseDims reads WIDTHxHEIGHT.
func parseDims(s string) (geometry.Dimensions, error) {
	a, b, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return geometry.Dimensions{}, fmt.Errorf("%q is not WIDTHxHEIGHT", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return geometry.Dimensions{}, fmt.Errorf("width: %w", err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return geometry.Dimensions{}, fmt.Errorf("height: %w", err)
	}
	d := geometry.Dims(w, h)
	if d.Empty() {
		return geometry.Dimensions{}, fmt.Errorf("%q must be positive", s)
	}
	return d, nil
}

// parsePoint reads X,Y.
func parsePoint(s string) (geometry.Point, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("%q is not X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Pt(x, y), nil
}
