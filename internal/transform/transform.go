// Package transform holds the normalized image transform: the 90° viewport
// rotation, the free straighten angle, the flip parity bits and the zoom and
// scale factors derived from them.
package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/shineycrop/internal/geometry"
)

// Rotation is a 90° step rotation in degrees, always in [0,360).
type Rotation int

// Normalize folds r into [0,360).
func (r Rotation) Normalize() Rotation {
	return ((r % 360) + 360) % 360
}

// Swapped reports whether the rotation exchanges width and height.
func (r Rotation) Swapped() bool {
	n := r.Normalize()
	return n == 90 || n == 270
}

// Axis names a flip axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// ParseAxis accepts "x", "y", "h" (horizontal, mirrors x) and "v".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "h", "horizontal":
		return AxisX, nil
	case "y", "v", "vertical":
		return AxisY, nil
	}
	return AxisX, fmt.Errorf("unknown flip axis %q", s)
}

// Flip holds the parity of flips applied along the source image axes. It is
// only consumed by the save payload.
type Flip struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

// Toggle flips the parity bit of axis.
func (f *Flip) Toggle(a Axis) {
	if a == AxisY {
		f.Y ^= 1
		return
	}
	f.X ^= 1
}

// Transform is the zoom-independent description of how the source image is
// placed in the editor.
type Transform struct {
	StraightenAngle float64
	Rotation        Rotation
	Flip            Flip
	// ScaleFactor shrinks the image so the rotated viewport fits the editor.
	ScaleFactor float64
	ZoomRatio   float64
}

// New returns the identity transform.
func New() Transform {
	return Transform{ScaleFactor: 1, ZoomRatio: 1}
}

// Swapped reports whether width and height are exchanged by the rotation.
func (t *Transform) Swapped() bool { return t.Rotation.Swapped() }

// TotalAngle returns the full on-screen rotation in degrees.
func (t *Transform) TotalAngle() float64 {
	return float64(t.Rotation) + t.StraightenAngle
}

// Rotate90 turns the image by direction, which must be +90 or -90. It returns
// the applied delta and false when the request was ignored.
func (t *Transform) Rotate90(direction int) (float64, bool) {
	if direction != 90 && direction != -90 {
		return 0, false
	}
	t.Rotation = (t.Rotation + Rotation(direction)).Normalize()
	return float64(direction), true
}

// FlipAxis mirrors the image along the on-screen axis. When the rotation has
// swapped orientation the source image axis is the other one. Mirroring
// reverses the sense of rotation, so the straighten angle changes sign.
func (t *Transform) FlipAxis(screen Axis) {
	effective := screen
	if t.Swapped() {
		effective = screen.Other()
	}
	t.Flip.Toggle(effective)
	if t.StraightenAngle != 0 {
		t.StraightenAngle = -t.StraightenAngle
	}
}

// Straighten sets the free rotation angle, optionally rounded to whole
// degrees, and returns the change from the previous angle.
func (t *Transform) Straighten(angle float64, round bool) float64 {
	if round {
		angle = math.Round(angle)
	}
	delta := angle - t.StraightenAngle
	t.StraightenAngle = angle
	return delta
}

// RotatedDimensions returns d with width and height exchanged when the
// rotation requires it.
func (t *Transform) RotatedDimensions(d geometry.Dimensions) geometry.Dimensions {
	if t.Swapped() {
		return d.Swap()
	}
	return d
}

// FitScaleFactor recomputes ScaleFactor so the rotated image fits the editor.
func (t *Transform) FitScaleFactor(d, editor geometry.Dimensions) float64 {
	rd := t.RotatedDimensions(d)
	t.ScaleFactor = math.Min(1, math.Min(editor.Width/rd.Width, editor.Height/rd.Height))
	return t.ScaleFactor
}

// ViewportDimensions returns the size of the normal view frame.
func (t *Transform) ViewportDimensions(d geometry.Dimensions) geometry.Dimensions {
	return t.RotatedDimensions(d).Scale(t.ScaleFactor)
}

// CoverZoom returns the zoom that covers the viewport in the normal view.
func (t *Transform) CoverZoom(d geometry.Dimensions) float64 {
	return geometry.ZoomToCoverRatio(t.RotatedDimensions(d), t.StraightenAngle) * t.ScaleFactor
}

// FitZoom returns the zoom at which the whole rotated image fits the editor.
func (t *Transform) FitZoom(d, editor geometry.Dimensions) float64 {
	return geometry.ZoomToFitRatio(d, t.TotalAngle(), editor.Width, editor.Height)
}

// ImageQuad returns the editor-space corners of the image at the current zoom.
func (t *Transform) ImageQuad(d, editor geometry.Dimensions) geometry.Quad {
	return geometry.ImageVerticeCoords(d, float64(t.Rotation), t.StraightenAngle, geometry.ZoomRatio(t.ZoomRatio), editor)
}

// ScaledImageDimensions fits original inside editor preserving the aspect
// ratio and rounds the result to whole pixels.
func ScaledImageDimensions(original, editor geometry.Dimensions) geometry.Dimensions {
	ratio := math.Min(editor.Width/original.Width, editor.Height/original.Height)
	return geometry.Dimensions{
		Width:  math.Max(1, math.Round(original.Width*ratio)),
		Height: math.Max(1, math.Round(original.Height*ratio)),
	}
}
