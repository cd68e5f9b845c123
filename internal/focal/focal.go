// Package focal tracks the focal point: a single point marking the visually
// important part of the image, kept with the same normalization rules as
// the crop rectangle.
package focal

import (
	"math"

	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

// State is the focal point offset from the image centre at zoom 1.
type State struct {
	OffsetX         float64             `json:"offsetX"`
	OffsetY         float64             `json:"offsetY"`
	ImageDimensions geometry.Dimensions `json:"imageDimensions"`
}

// FromRelative converts a point given as fractions of the image size into
// a State. Values outside [0,1] are clamped.
func FromRelative(x, y float64, dims geometry.Dimensions) State {
	x = math.Max(0, math.Min(1, x))
	y = math.Max(0, math.Min(1, y))
	return State{
		OffsetX:         (x - 0.5) * dims.Width,
		OffsetY:         (y - 0.5) * dims.Height,
		ImageDimensions: dims,
	}
}

func (s State) sizeFactor(dims geometry.Dimensions) float64 {
	if s.ImageDimensions.Width <= 0 {
		return 1
	}
	return dims.Width / s.ImageDimensions.Width
}

// Restore returns the live editor position of s.
func Restore(s State, dims geometry.Dimensions, zoom float64, center geometry.Point) geometry.Point {
	k := s.sizeFactor(dims) * zoom
	return center.Add(geometry.Pt(s.OffsetX, s.OffsetY).Scale(k))
}

// Capture converts a live position into a State.
func Capture(p geometry.Point, dims geometry.Dimensions, zoom float64, center geometry.Point) State {
	off := p.Sub(center).Scale(1 / zoom)
	return State{OffsetX: off.X, OffsetY: off.Y, ImageDimensions: dims}
}

// Rotate turns the offset by deg degrees.
func (s State) Rotate(deg float64) State {
	off := geometry.RotateOffset(geometry.Pt(s.OffsetX, s.OffsetY), deg)
	s.OffsetX, s.OffsetY = off.X, off.Y
	return s
}

// Mirror negates the offset along the screen axis.
func (s State) Mirror(axis transform.Axis) State {
	if axis == transform.AxisY {
		s.OffsetY = -s.OffsetY
	} else {
		s.OffsetX = -s.OffsetX
	}
	return s
}

// Point is the live focal point marker.
type Point struct {
	Pos     geometry.Point
	Visible bool
}

// Within reports whether p lies inside bounds using half-extent checks.
// The marker is never rotated so an axis-aligned test is enough.
func Within(p geometry.Point, bounds geometry.Rect) bool {
	c := bounds.Center()
	return math.Abs(p.X-c.X) <= bounds.Width/2 && math.Abs(p.Y-c.Y) <= bounds.Height/2
}

// Drag moves the marker by (dx, dy) if it stays inside bounds.
func (f *Point) Drag(dx, dy float64, bounds geometry.Rect) bool {
	next := f.Pos.Add(geometry.Pt(dx, dy))
	if !Within(next, bounds) {
		return false
	}
	f.Pos = next
	return true
}

// Refresh hides the marker when it has left bounds. It is never clamped.
func (f *Point) Refresh(bounds geometry.Rect) {
	f.Visible = Within(f.Pos, bounds)
}

// Reset recentres the marker on bounds and shows it.
func (f *Point) Reset(bounds geometry.Rect) {
	f.Pos = bounds.Center()
	f.Visible = true
}

// Opacity is 1 for a visible marker and 0 otherwise.
func (f *Point) Opacity() float64 {
	if f.Visible {
		return 1
	}
	return 0
}
