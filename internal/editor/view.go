package editor

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/example/shineycrop/internal/crop"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

// View selects which editing surface is shown.
type View int

const (
	ViewNormal View = iota
	ViewRotate
	ViewCrop
)

var viewNames = [...]string{"normal", "rotate", "crop"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// ParseView converts a view name.
func ParseView(s string) (View, error) {
	for i, n := range viewNames {
		if strings.EqualFold(s, n) {
			return View(i), nil
		}
	}
	return ViewNormal, fmt.Errorf("unknown view %q", s)
}

// ShowView switches to v. Leaving the crop view bakes the live rectangle
// into the normalized crop; entering it zooms to fit and restores the
// rectangle. Both directions end with a full layout pass.
func (e *Editor) ShowView(v View) error {
	if v == e.view {
		return nil
	}
	if e.mode == ModeBusy {
		return ErrBusy
	}
	if !e.isLoaded() {
		e.view = v
		return nil
	}
	anim := e.startAnimation()
	if e.view == ViewCrop {
		e.disableCropMode()
	}
	e.view = v
	e.layout()
	e.anim = anim
	e.animate(nil)
	return nil
}

func (e *Editor) disableCropMode() {
	e.bakeCrop()
	e.region = nil
	e.drag = dragState{}
}

// bakeCrop stores the live crop rectangle as normalized state.
func (e *Editor) bakeCrop() {
	if e.region == nil {
		return
	}
	e.crop = crop.Capture(e.region.Rect, e.dims, e.tr.ZoomRatio, e.center())
}

// Resize sets the canvas size and repositions everything proportionally.
// Non-positive sizes are ignored.
func (e *Editor) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if w == e.editor.Width && h == e.editor.Height {
		return
	}
	e.bakeCrop()
	e.editor = geometry.Dims(w, h)
	e.layout()
}

func (e *Editor) zoomFor(v View) float64 {
	if v == ViewCrop {
		return e.tr.FitZoom(e.dims, e.editor)
	}
	return e.tr.CoverZoom(e.dims)
}

// layout recomputes every live position from the normalized state.
func (e *Editor) layout() {
	if !e.isLoaded() {
		return
	}
	e.dims = transform.ScaledImageDimensions(e.original, e.editor)
	e.crop = e.crop.Rescale(e.dims)
	e.tr.FitScaleFactor(e.dims, e.editor)
	e.tr.ZoomRatio = e.zoomFor(e.view)
	// Width and height round separately, so the rescaled crop can poke
	// past a straightened or full-size image by a fraction of a pixel.
	if !crop.Fits(crop.Restore(e.crop, e.dims, e.tr.ZoomRatio, e.center()), e.ImageQuad()) {
		e.crop = e.correctCrop("resize", e.crop)
	}
	if e.view == ViewCrop {
		r := crop.Restore(e.crop, e.dims, e.tr.ZoomRatio, e.center())
		if e.region == nil {
			e.region = &crop.Region{Rect: r, MinSize: e.settings.MinCropSize, Backtrack: e.settings.DragBacktrack}
		} else {
			e.region.Rect = r
		}
	}
	e.refreshFocal()
	e.maybeReload()
}

// viewportRect is the visible frame: the rotated image shrunk to fit in the
// normal views and the whole canvas in crop view.
func (e *Editor) viewportRect() geometry.Rect {
	if e.view == ViewCrop {
		return geometry.Rect{Width: e.editor.Width, Height: e.editor.Height}
	}
	vd := e.tr.ViewportDimensions(e.dims)
	return geometry.RectFromCenter(e.center(), vd.Width, vd.Height)
}

// maybeReload asks for a sharper raster when the displayed image has
// outgrown the loaded one. Only one reload runs at a time.
func (e *Editor) maybeReload() {
	if e.src == nil || e.loading || e.raster == nil || e.assetID == "" {
		return
	}
	if e.loaded.Width >= e.original.Width && e.loaded.Height >= e.original.Height {
		return
	}
	g := e.settings.ReloadGrowth
	if e.dims.Width <= e.loaded.Width*g && e.dims.Height <= e.loaded.Height*g {
		return
	}
	size := int(math.Ceil(math.Max(e.dims.Width, e.dims.Height)))
	if e.settings.MaxPixelSize > 0 && size > e.settings.MaxPixelSize {
		size = e.settings.MaxPixelSize
	}
	e.loading = true
	assetID := e.assetID
	timeout := e.settings.ReloadTimeout
	var (
		img image.Image
		err error
	)
	e.dispatcher.Dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		img, _, err = e.src.Load(ctx, assetID, size)
	}, func() {
		e.loading = false
		if err != nil {
			e.reportError(fmt.Errorf("reload %s: %w", assetID, err))
			return
		}
		if assetID != e.assetID || img == nil {
			return
		}
		e.raster = img
		e.loaded = boundsDims(img)
	})
}

// Reloading reports whether a sharper raster is being fetched.
func (e *Editor) Reloading() bool { return e.loading }

// LoadedDimensions returns the size of the raster currently held.
func (e *Editor) LoadedDimensions() geometry.Dimensions { return e.loaded }
