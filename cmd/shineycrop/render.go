package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/shineycrop/internal/clipboard"
	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/render"
	"github.com/example/shineycrop/internal/source"
	"github.com/example/shineycrop/internal/theme"
)

// writeClipboardFn is swapped out in tests.
var writeClipboardFn = clipboard.WriteImage

type renderCmd struct {
	*root
	fs         *flag.FlagSet
	file       string
	payload    string
	output     string
	maxSize    int
	quality    int
	background string
	copy       bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	c := &renderCmd{root: r, fs: fs}
	fs.StringVar(&c.file, "file", "", "original image")
	fs.StringVar(&c.payload, "payload", "", "saved edit (default: <file base>.crop.json beside the image)")
	fs.StringVar(&c.output, "o", "", "output file; the extension selects the format (default: <file base>.crop.png)")
	fs.IntVar(&c.maxSize, "max", 0, "limit the longest side of the result (0 keeps full resolution)")
	fs.IntVar(&c.quality, "quality", render.DefaultJPEGQuality, "JPEG quality")
	fs.StringVar(&c.background, "background", "", "colour for the corners uncovered by straightening (transparent when empty)")
	fs.BoolVar(&c.copy, "copy", false, "also copy the result to the clipboard")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" && fs.NArg() > 0 {
		c.file = fs.Arg(0)
	}
	if c.file == "" {
		return nil, &UsageError{of: c}
	}
	base := strings.TrimSuffix(c.file, filepath.Ext(c.file))
	if c.payload == "" {
		c.payload = base + ".crop.json"
	}
	if c.output == "" {
		c.output = base + ".crop.png"
	}
	if _, err := render.FormatFromPath(c.output); err != nil {
		return nil, fmt.Errorf("invalid -o: %w", err)
	}
	if c.maxSize < 0 {
		return nil, fmt.Errorf("invalid -max: must not be negative")
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	p, err := readPayload(c.payload)
	if err != nil {
		return err
	}
	src, err := source.ReadFile(c.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.file, err)
	}
	opts := render.ExportOptions{MaxSize: c.maxSize}
	if c.background != "" {
		bg, err := theme.ParseColor(c.background)
		if err != nil {
			return fmt.Errorf("invalid -background: %w", err)
		}
		opts.Background = color.Color(bg)
	}
	img, err := render.Export(src, p, opts)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", c.file, err)
	}
	if err := render.Save(c.output, img, c.quality); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.output, err)
	}
	fmt.Fprintln(c.root.stdout, c.output)
	c.root.notifier.Render(c.output, img)

	if c.copy {
		if err := writeClipboardFn(img); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		c.root.notifier.Copy(filepath.Base(c.output))
	}
	return nil
}

func readPayload(path string) (editor.SavePayload, error) {
	var p editor.SavePayload
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read payload: %w", err)
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("failed to parse payload %s: %w", path, err)
	}
	if p.ImageDimensions.Empty() {
		return p, fmt.Errorf("payload %s has no imageDimensions", path)
	}
	return p, nil
}
