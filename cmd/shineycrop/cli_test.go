package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/shineycrop/internal/config"
	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/render"
	"github.com/example/shineycrop/internal/source"
)

func testRoot(t *testing.T) (*root, *bytes.Buffer) {
	t.Helper()
	t.Setenv("SHINEYCROP_THEME", "")
	r := newRootWithConfig(config.New())
	var out bytes.Buffer
	r.stdout = &out
	return r, &out
}

func TestRootRequiresCommand(t *testing.T) {
	r, _ := testRoot(t)
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "Commands:"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to contain %q, got %q", want, uerr.Error())
	}
}

func TestUnknownCommand(t *testing.T) {
	r, _ := testRoot(t)
	var uerr *UsageError
	if err := r.Run([]string{"snapshot"}); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestParseEditRequiresFile(t *testing.T) {
	r, _ := testRoot(t)
	_, err := parseEditCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "edit [flags] FILE"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to contain %q, got %q", want, uerr.Error())
	}
}

func TestParseEditFlags(t *testing.T) {
	r, _ := testRoot(t)
	e, err := parseEditCmd([]string{"-constraint", "square", "-view", "crop", "-format", "webp", "-focal", "10,-5", "-size", "640x480", "a.png"}, r)
	if err != nil {
		t.Fatalf("parseEditCmd: %v", err)
	}
	if e.file != "a.png" || e.ratio != 1 || e.initView != editor.ViewCrop || e.outFormat != render.FormatWebP {
		t.Fatalf("unexpected parse result: %+v", e)
	}
	if e.focalPoint == nil || *e.focalPoint != geometry.Pt(10, -5) {
		t.Fatalf("focal = %v", e.focalPoint)
	}
	if e.editorSize != geometry.Dims(640, 480) {
		t.Fatalf("size = %v", e.editorSize)
	}
	if got := e.saveDirectory(); got != "." {
		t.Fatalf("save dir = %q, want the image directory", got)
	}
}

func TestParseEditErrors(t *testing.T) {
	cases := map[string][]string{
		"-size":       {"-size", "big", "a.png"},
		"-constraint": {"-constraint", "wat", "a.png"},
		"-view":       {"-view", "sideways", "a.png"},
		"-format":     {"-format", "gif", "a.png"},
		"-focal":      {"-focal", "3", "a.png"},
	}
	for flagName, args := range cases {
		r, _ := testRoot(t)
		_, err := parseEditCmd(args, r)
		if err == nil {
			t.Fatalf("%s: expected error", flagName)
		}
		if want := "invalid " + flagName; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got %v", want, err)
		}
	}
}

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 12), B: 90, A: 255})
		}
	}
	if err := render.Save(path, img, 0); err != nil {
		t.Fatalf("write image: %v", err)
	}
}

func writePayload(t *testing.T, path string, p editor.SavePayload) {
	t.Helper()
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shot.png")
	writeImage(t, file, 40, 20)
	writePayload(t, filepath.Join(dir, "shot.crop.json"), editor.SavePayload{
		Zoom:            1,
		ImageDimensions: geometry.Dims(20, 10),
		CropData:        &editor.CropData{OffsetX: 5, Width: 10, Height: 10},
	})

	r, out := testRoot(t)
	if err := r.Run([]string{"render", file}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := filepath.Join(dir, "shot.crop.png")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	img, err := source.ReadFile(want)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(20, 20) {
		t.Fatalf("result size = %v", got)
	}
}

func TestRenderCopy(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shot.png")
	writeImage(t, file, 40, 20)
	writePayload(t, filepath.Join(dir, "shot.crop.json"), editor.SavePayload{Zoom: 1, ImageDimensions: geometry.Dims(40, 20)})

	original := writeClipboardFn
	var copied image.Image
	writeClipboardFn = func(img image.Image) error { copied = img; return nil }
	t.Cleanup(func() { writeClipboardFn = original })

	r, _ := testRoot(t)
	out := filepath.Join(dir, "out.jpg")
	if err := r.Run([]string{"render", "-copy", "-max", "10", "-o", out, file}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if copied == nil {
		t.Fatalf("result was not copied")
	}
	if got := copied.Bounds().Size(); got != image.Pt(10, 5) {
		t.Fatalf("copied size = %v", got)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("jpeg not written: %v", err)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shot.png")
	writeImage(t, file, 8, 8)

	r, _ := testRoot(t)
	err := r.Run([]string{"render", file})
	if want := "failed to read payload"; err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "shot.crop.json"), []byte(`{"zoom":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	err = r.Run([]string{"render", file})
	if want := "has no imageDimensions"; err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}

	if _, err := parseRenderCmd([]string{"-o", "out.gif", file}, r); err == nil || !strings.Contains(err.Error(), "invalid -o") {
		t.Fatalf("expected -o error, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	r, out := testRoot(t)
	if err := r.Run([]string{"inspect", "-original", "1600x800", "-size", "800x600"}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"scaled:        800x400", "scale factor:  1.0000", "cover zoom:    1.0000", "(0.0,100.0) (800.0,100.0) (800.0,500.0) (0.0,500.0)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := r.Run([]string{"inspect", "-original", "1600x800", "-size", "800x600", "-rotation", "90"}); err != nil {
		t.Fatalf("inspect rotated: %v", err)
	}
	if want := "rotated:       400x800"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out.String())
	}

	if _, err := parseInspectCmd([]string{"-original", "10x10", "-angle", "60"}, r); err == nil {
		t.Fatalf("expected angle error")
	}
}

func TestConfigCommands(t *testing.T) {
	r, out := testRoot(t)
	r.config.SaveDir = "/tmp/crops"
	if err := r.Run([]string{"config", "print"}); err != nil {
		t.Fatalf("config print: %v", err)
	}
	if !strings.Contains(out.String(), "/tmp/crops") {
		t.Fatalf("printed config lacks save dir:\n%s", out.String())
	}

	path := filepath.Join(t.TempDir(), "nested", "config.rc")
	if err := r.Run([]string{"config", "-file", path, "save"}); err != nil {
		t.Fatalf("config save: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if string(b) != r.config.String() {
		t.Fatalf("saved config = %q, want %q", b, r.config.String())
	}

	if err := r.Run([]string{"config", "frobnicate"}); err == nil {
		t.Fatalf("expected unknown subcommand error")
	}
}

func TestVersion(t *testing.T) {
	r, out := testRoot(t)
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if want := "shineycrop version dev"; !strings.Contains(out.String(), want) {
		t.Fatalf("version output = %q", out.String())
	}
}
