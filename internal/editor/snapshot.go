package editor

import (
	"github.com/example/shineycrop/internal/crop"
	"github.com/example/shineycrop/internal/focal"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

// CropData is the crop part of a SavePayload.
type CropData struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// SavePayload is everything the renderer needs to reproduce the edit. All
// lengths are measured against ImageDimensions.
type SavePayload struct {
	ViewportRotation int                 `json:"viewportRotation"`
	StraightenAngle  float64             `json:"straightenAngle"`
	FlipData         transform.Flip      `json:"flipData"`
	Zoom             float64             `json:"zoom"`
	ImageDimensions  geometry.Dimensions `json:"imageDimensions"`
	CropData         *CropData           `json:"cropData,omitempty"`
	FocalPoint       *focal.State        `json:"focalPoint,omitempty"`
	// OriginalDimensions is the size of the source image the payload was
	// made for.
	OriginalDimensions geometry.Dimensions `json:"originalDimensions"`
}

// Payload returns the normalized edit. It does not change the editor; a
// crop being edited is included as it currently stands.
func (e *Editor) Payload() SavePayload {
	p := SavePayload{
		ViewportRotation:   int(e.tr.Rotation),
		StraightenAngle:    e.tr.StraightenAngle,
		FlipData:           e.tr.Flip,
		Zoom:               1,
		ImageDimensions:    e.dims,
		OriginalDimensions: e.original,
	}
	if !e.isLoaded() {
		return p
	}
	p.Zoom = geometry.ZoomToCoverRatio(e.tr.RotatedDimensions(e.dims), e.tr.StraightenAngle)
	cs := e.CropState().Rescale(e.dims)
	if !cs.Covers(e.dims, e.tr.Swapped()) {
		p.CropData = &CropData{OffsetX: cs.OffsetX, OffsetY: cs.OffsetY, Width: cs.Width, Height: cs.Height}
	}
	if e.focalState != nil {
		fs := *e.focalState
		k := 1.0
		if fs.ImageDimensions.Width > 0 {
			k = e.dims.Width / fs.ImageDimensions.Width
		}
		p.FocalPoint = &focal.State{OffsetX: fs.OffsetX * k, OffsetY: fs.OffsetY * k, ImageDimensions: e.dims}
	}
	return p
}

// Crop returns the payload's crop as a State, the full rotated image when
// the payload carries none.
func (p SavePayload) Crop() crop.State {
	if p.CropData == nil {
		s := crop.FullImage(p.ImageDimensions)
		if transform.Rotation(p.ViewportRotation).Swapped() {
			s.Width, s.Height = s.Height, s.Width
		}
		return s
	}
	return crop.State{
		OffsetX:         p.CropData.OffsetX,
		OffsetY:         p.CropData.OffsetY,
		Width:           p.CropData.Width,
		Height:          p.CropData.Height,
		ImageDimensions: p.ImageDimensions,
	}
}

// Line is a segment in editor pixels.
type Line struct {
	A, B geometry.Point
}

// HandleBox is one crop resize handle.
type HandleBox struct {
	Handle crop.Handle
	Rect   geometry.Rect
}

// CropOverlay is the crop rectangle with its handles and thirds grid.
type CropOverlay struct {
	Rect    geometry.Rect
	Handles []HandleBox
	Grid    []Line
	// Active is the handle being dragged, if any.
	Active crop.Handle
}

// FocalMarker is the focal point control.
type FocalMarker struct {
	Pos     geometry.Point
	Radius  float64
	Opacity float64
}

// Scene is a snapshot of everything on the canvas.
type Scene struct {
	Editor geometry.Dimensions
	View   View
	Busy   bool
	// Image holds the corners of the drawn image, its own top-left first.
	Image geometry.Quad
	// ImageSize is the unrotated size of the drawn image.
	ImageSize geometry.Dimensions
	Angle     float64
	Flip      transform.Flip
	Viewport  geometry.Rect
	Crop      *CropOverlay
	// Grid is the straightening guide shown in the rotate view.
	Grid  []Line
	Focal *FocalMarker
}

// Scene returns the current live geometry, mid-animation positions
// included.
func (e *Editor) Scene() Scene {
	s := Scene{Editor: e.editor, View: e.view, Busy: e.mode == ModeBusy, Flip: e.tr.Flip}
	if !e.isLoaded() {
		return s
	}
	angle := e.tr.TotalAngle()
	zoom := e.tr.ZoomRatio
	var cropRect geometry.Rect
	if e.region != nil {
		cropRect = e.region.Rect
	}
	if a := e.anim; a != nil {
		angle += a.angle * (1 - a.t)
		zoom = lerp(a.zoom, zoom, a.t)
		if e.region != nil {
			cropRect = lerpRect(a.crop, cropRect, a.t)
		}
	}
	s.Angle = angle
	s.ImageSize = e.dims.Scale(zoom)
	s.Image = geometry.QuadAround(e.center(), s.ImageSize, angle)
	s.Viewport = e.viewportRect()
	if e.region != nil {
		ov := &CropOverlay{Rect: cropRect, Grid: gridLines(cropRect, 3)}
		if e.drag.target == TargetResize {
			ov.Active = e.drag.handle
		}
		for _, h := range crop.Handles {
			ov.Handles = append(ov.Handles, HandleBox{Handle: h, Rect: crop.HandleRect(cropRect, h, e.settings.HandleSize)})
		}
		s.Crop = ov
	}
	if e.view == ViewRotate {
		s.Grid = gridLines(s.Viewport, 8)
	}
	if e.focalState != nil {
		s.Focal = &FocalMarker{Pos: e.focalPt.Pos, Radius: e.settings.FocalRadius, Opacity: e.focalPt.Opacity()}
	}
	return s
}

// gridLines splits r into n×n cells.
func gridLines(r geometry.Rect, n int) []Line {
	var out []Line
	for i := 1; i < n; i++ {
		x := r.Left + r.Width*float64(i)/float64(n)
		y := r.Top + r.Height*float64(i)/float64(n)
		out = append(out,
			Line{A: geometry.Pt(x, r.Top), B: geometry.Pt(x, r.Bottom())},
			Line{A: geometry.Pt(r.Left, y), B: geometry.Pt(r.Right(), y)},
		)
	}
	return out
}
