package source

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/shineycrop/internal/geometry"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestFileSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 400, 200)
	src := NewFileSource(dir)

	img, dims, err := src.Load(context.Background(), "wide.png", 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if dims != geometry.Dims(400, 200) {
		t.Fatalf("original dims = %v", dims)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("scaled raster = %v", b)
	}

	img, _, err = src.Load(context.Background(), "wide.png", 0)
	if err != nil {
		t.Fatalf("Load unlimited: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("unlimited raster = %v", b)
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource(dir)
	if _, _, err := src.Load(context.Background(), "missing.png", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing asset error = %v", err)
	}
	if _, _, err := src.Load(context.Background(), "../etc/passwd", 0); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("escaping asset error = %v", err)
	}
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := src.Load(context.Background(), "bad.png", 0); err == nil {
		t.Fatalf("expected decode error")
	}

	writePNG(t, filepath.Join(dir, "ok.png"), 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := src.Load(ctx, "ok.png", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled load error = %v", err)
	}
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, max int
		ww, wh    int
	}{
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{50, 20, 100, 50, 20},
		{1000, 1, 10, 10, 1},
	}
	for _, c := range cases {
		img := Fit(image.NewRGBA(image.Rect(0, 0, c.w, c.h)), c.max)
		if b := img.Bounds(); b.Dx() != c.ww || b.Dy() != c.wh {
			t.Errorf("Fit(%dx%d, %d) = %v, want %dx%d", c.w, c.h, c.max, b, c.ww, c.wh)
		}
	}
}
