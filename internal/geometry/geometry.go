// Package geometry holds the pure 2D math used by the editor: point and
// rectangle value types, containment tests for rotated rectangles, edge
// crossing detection and the zoom solvers that keep a crop region inside a
// rotated image.
//
// Everything here works in editor space: origin top-left, x to the right,
// y down. Positive angles rotate clockwise on screen.
package geometry

import "math"

// Point represents a 2D point or vector.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len returns the euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dimensions is a width/height pair.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Dims is shorthand for Dimensions{Width: w, Height: h}.
func Dims(w, h float64) Dimensions { return Dimensions{Width: w, Height: h} }

// Swap exchanges width and height.
func (d Dimensions) Swap() Dimensions { return Dimensions{Width: d.Height, Height: d.Width} }

// Scale multiplies both sides by s.
func (d Dimensions) Scale(s float64) Dimensions {
	return Dimensions{Width: d.Width * s, Height: d.Height * s}
}

// Empty reports whether either side is not positive.
func (d Dimensions) Empty() bool { return d.Width <= 0 || d.Height <= 0 }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// RectFromCenter builds a rectangle of the given size centred on c.
func RectFromCenter(c Point, w, h float64) Rect {
	return Rect{Left: c.X - w/2, Top: c.Y - h/2, Width: w, Height: h}
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the midpoint of r.
func (r Rect) Center() Point { return Point{r.Left + r.Width/2, r.Top + r.Height/2} }

// Translate moves r by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Size returns the width and height of r.
func (r Rect) Size() Dimensions { return Dimensions{Width: r.Width, Height: r.Height} }

// Quad holds the corners of a possibly rotated rectangle in the order
// topLeft, topRight, bottomRight, bottomLeft.
type Quad [4]Point

// Points returns the corners as a slice.
func (q Quad) Points() []Point { return q[:] }

// Center returns the intersection of the diagonals.
func (q Quad) Center() Point {
	return q[0].Add(q[2]).Scale(0.5)
}

// RectangleVertices returns the corners of r shifted by the offsets.
func RectangleVertices(r Rect, offsetX, offsetY float64) Quad {
	left := r.Left + offsetX
	top := r.Top + offsetY
	right := left + r.Width
	bottom := top + r.Height
	return Quad{
		{left, top},
		{right, top},
		{right, bottom},
		{left, bottom},
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }
