package editor

import (
	"fmt"
	"log"
	"math"

	"github.com/example/shineycrop/internal/crop"
	"github.com/example/shineycrop/internal/focal"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

// MaxStraighten bounds the free rotation angle in either direction.
const MaxStraighten = 45

// startAnimation snapshots what is on screen before a transform.
func (e *Editor) startAnimation() *animation {
	a := &animation{angle: e.tr.TotalAngle(), zoom: e.tr.ZoomRatio}
	if e.region != nil {
		a.crop = e.region.Rect
	} else {
		a.crop = e.viewportRect()
	}
	return a
}

// animate enters Busy and plays e.anim; Busy is left once the animator
// reports completion, after which then runs.
func (e *Editor) animate(then func()) {
	e.mode = ModeBusy
	if e.anim != nil {
		e.anim.angle = angleDelta(e.anim.angle, e.tr.TotalAngle())
	}
	e.animator.Animate(e.settings.AnimationDuration, func(t float64) {
		if e.anim != nil {
			e.anim.t = math.Max(0, math.Min(1, t))
		}
	}, func() {
		e.anim = nil
		e.mode = ModeIdle
		if then != nil {
			then()
		}
	})
}

// angleDelta returns from-to folded into (-180, 180].
func angleDelta(from, to float64) float64 {
	d := math.Mod(from-to, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// Rotate90 turns the image a quarter turn; direction is +90 (clockwise) or
// -90. Other directions are ignored. The focal point follows once the
// animation has finished.
func (e *Editor) Rotate90(direction int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if direction != 90 && direction != -90 {
		return nil
	}
	e.bakeCrop()
	anim := e.startAnimation()
	delta, _ := e.tr.Rotate90(direction)
	e.crop = e.crop.Rotate90(delta)
	e.layout()
	e.anim = anim
	e.animate(func() {
		if e.focalState != nil {
			s := e.focalState.Rotate(delta)
			e.focalState = &s
		}
		e.refreshFocal()
	})
	return nil
}

// Flip mirrors the image along the on-screen axis.
func (e *Editor) Flip(axis transform.Axis) error {
	if err := e.ready(); err != nil {
		return err
	}
	if axis != transform.AxisX && axis != transform.AxisY {
		return nil
	}
	e.bakeCrop()
	anim := e.startAnimation()
	e.tr.FlipAxis(axis)
	e.crop = e.crop.Mirror(axis)
	if e.focalState != nil {
		s := e.focalState.Mirror(axis)
		e.focalState = &s
	}
	e.layout()
	e.anim = anim
	e.animate(nil)
	return nil
}

// Straighten sets the free rotation angle, clamped to ±MaxStraighten. The
// crop rotates with the image and shrinks as needed to stay inside it.
func (e *Editor) Straighten(angle float64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil
	}
	angle = math.Max(-MaxStraighten, math.Min(MaxStraighten, angle))
	e.bakeCrop()
	anim := e.startAnimation()
	delta := e.tr.Straighten(angle, e.settings.RoundStraighten)
	if delta == 0 {
		return nil
	}
	rotated := e.crop.Rotate(delta)
	e.crop = e.correctCrop(fmt.Sprintf("straighten %.2f", e.tr.StraightenAngle), rotated)
	if e.focalState != nil {
		s := e.focalState.Rotate(delta)
		e.focalState = &s
	}
	e.layout()
	e.anim = anim
	e.animate(nil)
	return nil
}

// correctCrop shrinks s until it fits the image at the current rotation.
// op names the caller in the log when the correction falls back.
func (e *Editor) correctCrop(op string, s crop.State) crop.State {
	corrected, res := crop.Correct(s, e.dims, float64(e.tr.Rotation), e.tr.StraightenAngle, e.tr.ZoomRatio, e.settings.MaxCorrectionIterations)
	switch {
	case !res.Converged:
		log.Printf("%s: crop centre left the image, keeping crop", op)
	case res.Fallback:
		log.Printf("%s: correction did not settle after %d steps, bisected to %.4f", op, res.Iterations, res.Ratio)
	}
	return corrected
}

// SetConstraint sets the crop aspect ratio (width/height). Zero or a
// negative ratio removes the constraint.
func (e *Editor) SetConstraint(ratio float64) error {
	if e.mode == ModeBusy {
		return ErrBusy
	}
	if ratio < 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	e.constraint = ratio
	if ratio == 0 || !e.isLoaded() {
		return nil
	}
	if e.region == nil {
		e.applyConstraint()
		return nil
	}
	e.anim = e.startAnimation()
	e.region.EnforceConstraint(ratio, e.ImageQuad())
	e.animate(nil)
	return nil
}

// applyConstraint reshapes the normalized crop outside crop view.
func (e *Editor) applyConstraint() {
	quad := e.ImageQuad()
	r := crop.Restore(e.crop, e.dims, e.tr.ZoomRatio, e.center())
	r = crop.ConstrainedRect(r, e.constraint, quad)
	e.crop = crop.Capture(r, e.dims, e.tr.ZoomRatio, e.center())
}

// ResetCrop selects the whole image again.
func (e *Editor) ResetCrop() error {
	if err := e.ready(); err != nil {
		return err
	}
	e.crop = crop.FullImage(e.dims)
	if e.tr.Swapped() {
		e.crop.Width, e.crop.Height = e.crop.Height, e.crop.Width
	}
	if e.tr.StraightenAngle != 0 {
		e.crop = e.correctCrop("reset crop", e.crop)
	}
	if e.region != nil {
		e.region.Rect = crop.Restore(e.crop, e.dims, e.tr.ZoomRatio, e.center())
	}
	if e.constraint > 0 {
		if e.region != nil {
			e.region.EnforceConstraint(e.constraint, e.ImageQuad())
		} else {
			e.applyConstraint()
		}
	}
	e.refreshFocal()
	return nil
}

// focalBounds is the crop rectangle in crop view and the viewport otherwise.
func (e *Editor) focalBounds() geometry.Rect {
	if e.region != nil {
		return e.region.Rect
	}
	return e.viewportRect()
}

func (e *Editor) refreshFocal() {
	if e.focalState == nil {
		e.focalPt = focal.Point{}
		return
	}
	e.focalPt.Pos = focal.Restore(*e.focalState, e.dims, e.tr.ZoomRatio, e.center())
	e.focalPt.Refresh(e.focalBounds())
}

func (e *Editor) captureFocal() {
	s := focal.Capture(e.focalPt.Pos, e.dims, e.tr.ZoomRatio, e.center())
	e.focalState = &s
}

// ToggleFocalPoint removes the focal point, or creates one in the middle of
// the crop or viewport.
func (e *Editor) ToggleFocalPoint() error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.focalState != nil {
		e.focalState = nil
		e.refreshFocal()
		return nil
	}
	return e.ResetFocalPoint()
}

// ResetFocalPoint moves the focal point to the centre of the crop or
// viewport, creating it if needed.
func (e *Editor) ResetFocalPoint() error {
	if err := e.ready(); err != nil {
		return err
	}
	e.focalPt.Reset(e.focalBounds())
	e.captureFocal()
	return nil
}
