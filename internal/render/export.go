// Package render turns editor state into pixels: the final export of a
// saved edit and the on-screen drawing of a scene.
package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/transform"
)

// ErrEmptyCrop is returned when the crop leaves no pixels.
var ErrEmptyCrop = errors.New("render: crop is empty")

// ExportOptions tune Export.
type ExportOptions struct {
	// MaxSize limits the longest side of the result. Zero keeps the crop at
	// full resolution.
	MaxSize int
	// Background fills the corners uncovered by the free rotation. Nil
	// leaves them transparent.
	Background color.Color
}

// Export applies a saved edit to src, which may be the original file or any
// resampling of it. The payload's lengths are scaled from ImageDimensions to
// the width of src.
func Export(src image.Image, p editor.SavePayload, opts ExportOptions) (*image.NRGBA, error) {
	b := src.Bounds()
	if b.Empty() || p.ImageDimensions.Empty() {
		return nil, ErrEmptyCrop
	}
	k := float64(b.Dx()) / p.ImageDimensions.Width

	img := imaging.Clone(src)
	if p.FlipData.X != 0 {
		img = imaging.FlipH(img)
	}
	if p.FlipData.Y != 0 {
		img = imaging.FlipV(img)
	}
	switch transform.Rotation(p.ViewportRotation).Normalize() {
	case 90:
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}
	if p.StraightenAngle != 0 {
		bg := opts.Background
		if bg == nil {
			bg = color.Transparent
		}
		img = imaging.Rotate(img, -p.StraightenAngle, bg)
	}

	rect := CropRect(img.Bounds(), p, k)
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}
	img = imaging.Crop(img, rect)

	if opts.MaxSize > 0 {
		if w, h := rect.Dx(), rect.Dy(); w > opts.MaxSize || h > opts.MaxSize {
			img = imaging.Fit(img, opts.MaxSize, opts.MaxSize, imaging.Lanczos)
		}
	}
	return img, nil
}

// CropRect places the payload's crop on a canvas holding the flipped and
// rotated image at k times the payload scale. Without crop data the crop
// is the largest frame of the rotated image's shape that stays inside it.
func CropRect(canvas image.Rectangle, p editor.SavePayload, k float64) image.Rectangle {
	cs := p.Crop()
	w, h := cs.Width, cs.Height
	if p.CropData == nil && p.Zoom > 0 {
		w, h = w/p.Zoom, h/p.Zoom
	}
	cx := float64(canvas.Min.X) + float64(canvas.Dx())/2 + cs.OffsetX*k
	cy := float64(canvas.Min.Y) + float64(canvas.Dy())/2 + cs.OffsetY*k
	hw, hh := w*k/2, h*k/2
	return image.Rect(
		int(math.Round(cx-hw)), int(math.Round(cy-hh)),
		int(math.Round(cx+hw)), int(math.Round(cy+hh)),
	)
}
