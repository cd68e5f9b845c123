// Package crop owns the crop rectangle: its normalized, zoom-independent
// state, the conversion to and from live editor pixels, and the clamping
// rules that keep it inside the rotated image.
package crop

import (
	"math"

	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

// State is the crop rectangle captured at zoom 1. Offsets are measured from
// the image centre in editor axes against ImageDimensions, the scaled image
// size at the time of capture.
type State struct {
	OffsetX         float64             `json:"offsetX"`
	OffsetY         float64             `json:"offsetY"`
	Width           float64             `json:"width"`
	Height          float64             `json:"height"`
	ImageDimensions geometry.Dimensions `json:"imageDimensions"`
}

// FullImage returns a crop covering the whole image of size d.
func FullImage(d geometry.Dimensions) State {
	return State{Width: d.Width, Height: d.Height, ImageDimensions: d}
}

// SizeFactor converts the state's units into those of dims.
func (s State) SizeFactor(dims geometry.Dimensions) float64 {
	if s.ImageDimensions.Width <= 0 {
		return 1
	}
	return dims.Width / s.ImageDimensions.Width
}

// Offset returns the centre offset as a point.
func (s State) Offset() geometry.Point { return geometry.Pt(s.OffsetX, s.OffsetY) }

// Restore converts s to a live rectangle for an image of size dims shown at
// zoom with its centre at center.
func Restore(s State, dims geometry.Dimensions, zoom float64, center geometry.Point) geometry.Rect {
	k := s.SizeFactor(dims) * zoom
	c := center.Add(s.Offset().Scale(k))
	return geometry.RectFromCenter(c, s.Width*k, s.Height*k)
}

// Capture converts a live rectangle back into normalized state.
func Capture(r geometry.Rect, dims geometry.Dimensions, zoom float64, center geometry.Point) State {
	off := r.Center().Sub(center).Scale(1 / zoom)
	return State{
		OffsetX:         off.X,
		OffsetY:         off.Y,
		Width:           r.Width / zoom,
		Height:          r.Height / zoom,
		ImageDimensions: dims,
	}
}

// Rotate turns the offset by deg degrees around the image centre.
func (s State) Rotate(deg float64) State {
	off := geometry.RotateOffset(s.Offset(), deg)
	s.OffsetX, s.OffsetY = off.X, off.Y
	return s
}

// Rotate90 rotates the offset by a quarter turn and swaps the size.
func (s State) Rotate90(direction float64) State {
	s = s.Rotate(direction)
	s.Width, s.Height = s.Height, s.Width
	return s
}

// Mirror negates the offset along the given screen axis.
func (s State) Mirror(axis transform.Axis) State {
	if axis == transform.AxisY {
		s.OffsetY = -s.OffsetY
	} else {
		s.OffsetX = -s.OffsetX
	}
	return s
}

// Rescale expresses s against dims.
func (s State) Rescale(dims geometry.Dimensions) State {
	k := s.SizeFactor(dims)
	return State{
		OffsetX:         s.OffsetX * k,
		OffsetY:         s.OffsetY * k,
		Width:           s.Width * k,
		Height:          s.Height * k,
		ImageDimensions: dims,
	}
}

// Covers reports whether s spans the whole image, which is rotated when
// swapped is set. Such a crop need not be sent to the renderer.
func (s State) Covers(dims geometry.Dimensions, swapped bool) bool {
	r := s.Rescale(dims)
	full := dims
	if swapped {
		full = dims.Swap()
	}
	const tol = 0.5
	return math.Abs(r.OffsetX) < tol && math.Abs(r.OffsetY) < tol &&
		math.Abs(r.Width-full.Width) < tol && math.Abs(r.Height-full.Height) < tol
}
