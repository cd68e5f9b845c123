package geometry

import (
	"math"

	"golang.org/x/image/math/f64"
)

// sincos returns the sine and cosine of deg, exact for multiples of 90.
func sincos(deg float64) (sin, cos float64) {
	if q := deg / 90; q == math.Trunc(q) {
		switch ((int(q) % 4) + 4) % 4 {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		case 3:
			return -1, 0
		}
	}
	return math.Sincos(Deg2Rad(deg))
}

// RotationMatrix returns the affine matrix rotating by deg about the origin.
func RotationMatrix(deg float64) f64.Aff3 {
	s, c := sincos(deg)
	return f64.Aff3{
		c, -s, 0,
		s, c, 0,
	}
}

// Apply transforms p by m.
func Apply(m f64.Aff3, p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// RotateOffset rotates the vector p by deg degrees.
func RotateOffset(p Point, deg float64) Point {
	return Apply(RotationMatrix(deg), p)
}

// ImageBoundingBox returns the axis-aligned box of an image of size d rotated
// by angleDeg. When swapped is set, the 90° rotation has exchanged the axes
// and the result is swapped to match.
func ImageBoundingBox(d Dimensions, angleDeg float64, swapped bool) Dimensions {
	s, c := sincos(angleDeg)
	s, c = math.Abs(s), math.Abs(c)
	box := Dimensions{
		Width:  d.Width*c + d.Height*s,
		Height: d.Height*c + d.Width*s,
	}
	if swapped {
		return box.Swap()
	}
	return box
}

// ZoomToCoverRatio returns the smallest uniform scale for which an image of
// size d rotated by angleDeg still covers an unrotated frame of size d.
func ZoomToCoverRatio(d Dimensions, angleDeg float64) float64 {
	s, c := sincos(angleDeg)
	s, c = math.Abs(s), math.Abs(c)
	scaledWidth := s*d.Height + c*d.Width
	scaledHeight := s*d.Width + c*d.Height
	return math.Max(scaledWidth/d.Width, scaledHeight/d.Height)
}

// ZoomToFitRatio returns the scale at which the bounding box of d rotated by
// angleDeg fits inside the editor. Boxes that already fit keep a ratio of 1.
func ZoomToFitRatio(d Dimensions, angleDeg, editorWidth, editorHeight float64) float64 {
	box := ImageBoundingBox(d, angleDeg, false)
	if box.Width <= editorWidth && box.Height <= editorHeight {
		return 1
	}
	return math.Min(editorWidth/box.Width, editorHeight/box.Height)
}

type zoomMode int

const (
	zoomExplicit zoomMode = iota
	zoomFit
	zoomCover
)

// Zoom selects how ImageVerticeCoords scales the image.
type Zoom struct {
	mode  zoomMode
	ratio float64
}

var (
	// ZoomFit scales the rotated bounding box to fit the editor.
	ZoomFit = Zoom{mode: zoomFit}
	// ZoomCover scales the image to cover its unrotated frame.
	ZoomCover = Zoom{mode: zoomCover}
)

// ZoomRatio uses an explicit ratio.
func ZoomRatio(r float64) Zoom { return Zoom{mode: zoomExplicit, ratio: r} }

// Resolve returns the numeric ratio for the given image placement. rotation
// is the 90° step component of the angle and straighten the free component.
func (z Zoom) Resolve(d Dimensions, rotation, straighten float64, editor Dimensions) float64 {
	switch z.mode {
	case zoomFit:
		return ZoomToFitRatio(d, rotation+straighten, editor.Width, editor.Height)
	case zoomCover:
		frame := d
		if math.Mod(math.Abs(rotation), 180) == 90 {
			frame = d.Swap()
		}
		return ZoomToCoverRatio(frame, straighten)
	}
	return z.ratio
}

// ImageVerticeCoords returns the editor-space corners of an image of size d
// rotated by rotation+straighten degrees, scaled by zoom and centred in the
// editor. The corners keep the image's own order (its top-left first).
func ImageVerticeCoords(d Dimensions, rotation, straighten float64, zoom Zoom, editor Dimensions) Quad {
	ratio := zoom.Resolve(d, rotation, straighten, editor)
	center := Point{editor.Width / 2, editor.Height / 2}
	return QuadAround(center, d.Scale(ratio), rotation+straighten)
}

// QuadAround returns the corners of a rectangle of size d centred on center
// and rotated by angleDeg.
func QuadAround(center Point, d Dimensions, angleDeg float64) Quad {
	m := RotationMatrix(angleDeg)
	hw, hh := d.Width/2, d.Height/2
	corners := Quad{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	for i, p := range corners {
		corners[i] = Apply(m, p).Add(center)
	}
	return corners
}
