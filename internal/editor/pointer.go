package editor

import (
	"github.com/example/shineycrop/internal/crop"
	"github.com/example/shineycrop/internal/focal"
	"github.com/example/shineycrop/internal/geometry"
)

// Target is what a pointer drag manipulates.
type Target int

const (
	TargetNone Target = iota
	TargetMove
	TargetResize
	TargetFocal
)

func (t Target) String() string {
	switch t {
	case TargetMove:
		return "move"
	case TargetResize:
		return "resize"
	case TargetFocal:
		return "focal"
	}
	return "none"
}

type dragState struct {
	target  Target
	handle  crop.Handle
	anchor  geometry.Point
	pending *geometry.Point
}

// HitTest reports what a drag starting at p would manipulate. The focal
// marker wins over the crop handles, which win over the crop body.
func (e *Editor) HitTest(p geometry.Point) (Target, crop.Handle) {
	if !e.isLoaded() {
		return TargetNone, crop.HandleNone
	}
	if e.focalState != nil && e.focalPt.Visible {
		if p.Sub(e.focalPt.Pos).Len() <= e.settings.FocalRadius {
			return TargetFocal, crop.HandleNone
		}
	}
	if e.region == nil {
		return TargetNone, crop.HandleNone
	}
	if h := crop.HandleAt(e.region.Rect, p, e.settings.HandleSize); h != crop.HandleNone {
		return TargetResize, h
	}
	if focal.Within(p, e.region.Rect) {
		return TargetMove, crop.HandleNone
	}
	return TargetNone, crop.HandleNone
}

// BeginDrag starts manipulating target from p. It fails while a transform
// is animating or when target is not available in the current view.
func (e *Editor) BeginDrag(target Target, h crop.Handle, p geometry.Point) bool {
	if e.mode == ModeBusy || !e.isLoaded() {
		return false
	}
	switch target {
	case TargetMove:
		if e.region == nil {
			return false
		}
	case TargetResize:
		if e.region == nil || h == crop.HandleNone {
			return false
		}
	case TargetFocal:
		if e.focalState == nil {
			return false
		}
	default:
		return false
	}
	e.drag = dragState{target: target, handle: h, anchor: p}
	return true
}

// BeginDragAt hit tests p and starts a drag on whatever is there.
func (e *Editor) BeginDragAt(p geometry.Point) Target {
	t, h := e.HitTest(p)
	if !e.BeginDrag(t, h, p) {
		return TargetNone
	}
	return t
}

// Dragging reports whether a drag is in progress.
func (e *Editor) Dragging() bool { return e.drag.target != TargetNone }

// PointerMove records the latest pointer position. Nothing is recomputed
// until the next Frame.
func (e *Editor) PointerMove(p geometry.Point) {
	if e.drag.target == TargetNone {
		return
	}
	e.drag.pending = &p
}

// Frame applies the most recent pointer position and reports whether the
// geometry changed.
func (e *Editor) Frame() bool {
	if e.drag.pending == nil {
		return false
	}
	p := *e.drag.pending
	e.drag.pending = nil
	if e.mode == ModeBusy {
		return false
	}
	dx, dy := p.X-e.drag.anchor.X, p.Y-e.drag.anchor.Y
	switch e.drag.target {
	case TargetMove:
		if e.region == nil {
			return false
		}
		ax, ay, ok := e.region.Drag(dx, dy, e.ImageQuad())
		if !ok {
			return false
		}
		e.drag.anchor = e.drag.anchor.Add(geometry.Pt(ax, ay))
		e.focalPt.Refresh(e.focalBounds())
		return true
	case TargetResize:
		if e.region == nil || !e.region.Resize(e.drag.handle, dx, dy, e.constraint, e.ImageQuad()) {
			return false
		}
		e.drag.anchor = p
		e.focalPt.Refresh(e.focalBounds())
		return true
	case TargetFocal:
		if e.focalState == nil || !e.focalPt.Drag(dx, dy, e.focalBounds()) {
			return false
		}
		e.drag.anchor = p
		e.captureFocal()
		return true
	}
	return false
}

// EndDrag flushes any pending position and finishes the drag.
func (e *Editor) EndDrag() {
	e.Frame()
	e.drag = dragState{}
}
