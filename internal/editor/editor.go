// Package editor coordinates the image transform, crop region and focal
// point of one editing session. It owns the view state machine and turns the
// normalized state into the live pixel geometry a renderer draws.
//
// The editor is not safe for concurrent use. Every method, including the
// Animator and Dispatcher callbacks, must run on the same event loop.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"time"

	"github.com/example/shineycrop/internal/crop"
	"github.com/example/shineycrop/internal/focal"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

var (
	// ErrBusy is returned when a transform is requested while another one is
	// still animating.
	ErrBusy = errors.New("editor: transform in progress")
	// ErrNotLoaded is returned by transforms issued before an image is loaded.
	ErrNotLoaded = errors.New("editor: no image loaded")
)

// ImageSource fetches a raster for an asset, downsized so neither side
// exceeds maxPixelSize (0 for no limit). It also reports the size of the
// original image.
type ImageSource interface {
	Load(ctx context.Context, assetID string, maxPixelSize int) (image.Image, geometry.Dimensions, error)
}

// Mode is the editor's transform mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeBusy
)

func (m Mode) String() string {
	if m == ModeBusy {
		return "busy"
	}
	return "idle"
}

// Settings tunes the editor. The zero value of a field selects its default.
type Settings struct {
	RoundStraighten         bool
	MinCropSize             float64
	DragBacktrack           int
	MaxCorrectionIterations int
	// ReloadGrowth is how much larger than the loaded raster the displayed
	// image may become before a sharper one is requested.
	ReloadGrowth      float64
	AnimationDuration time.Duration
	ReloadTimeout     time.Duration
	HandleSize        float64
	FocalRadius       float64
	// MaxPixelSize caps the raster requested from the source.
	MaxPixelSize int
}

// DefaultSettings returns the stock settings.
func DefaultSettings() Settings {
	return Settings{
		MinCropSize:             crop.DefaultMinSize,
		DragBacktrack:           crop.DefaultDragBacktrack,
		MaxCorrectionIterations: crop.DefaultMaxCorrectionIterations,
		ReloadGrowth:            1.5,
		AnimationDuration:       200 * time.Millisecond,
		ReloadTimeout:           30 * time.Second,
		HandleSize:              12,
		FocalRadius:             10,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MinCropSize <= 0 {
		s.MinCropSize = d.MinCropSize
	}
	if s.DragBacktrack <= 0 {
		s.DragBacktrack = d.DragBacktrack
	}
	if s.MaxCorrectionIterations <= 0 {
		s.MaxCorrectionIterations = d.MaxCorrectionIterations
	}
	if s.ReloadGrowth <= 1 {
		s.ReloadGrowth = d.ReloadGrowth
	}
	if s.AnimationDuration < 0 {
		s.AnimationDuration = 0
	}
	if s.ReloadTimeout <= 0 {
		s.ReloadTimeout = d.ReloadTimeout
	}
	if s.HandleSize <= 0 {
		s.HandleSize = d.HandleSize
	}
	if s.FocalRadius <= 0 {
		s.FocalRadius = d.FocalRadius
	}
	return s
}

// Option configures an Editor.
type Option func(*Editor)

// WithSource sets where Load fetches images from.
func WithSource(src ImageSource) Option { return func(e *Editor) { e.src = src } }

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option { return func(e *Editor) { e.settings = s.withDefaults() } }

// WithAnimator sets how transitions are played. The default completes them
// immediately.
func WithAnimator(a Animator) Option { return func(e *Editor) { e.animator = a } }

// WithDispatcher sets where reloads run. The default runs them inline.
func WithDispatcher(d Dispatcher) Option { return func(e *Editor) { e.dispatcher = d } }

// WithErrorHandler receives image I/O failures that happen outside Load.
func WithErrorHandler(fn func(error)) Option { return func(e *Editor) { e.onError = fn } }

// WithEditorSize sets the initial canvas size.
func WithEditorSize(w, h float64) Option {
	return func(e *Editor) { e.editor = geometry.Dims(w, h) }
}

// WithInitialFocalPoint places a focal point at relative coordinates once the
// image has loaded.
func WithInitialFocalPoint(x, y float64) Option {
	return func(e *Editor) { e.initialFocal = &geometry.Point{X: x, Y: y} }
}

// WithConstraint starts the session with an aspect ratio constraint.
func WithConstraint(ratio float64) Option {
	return func(e *Editor) { e.constraint = math.Max(0, ratio) }
}

// Editor is one editing session.
type Editor struct {
	settings   Settings
	src        ImageSource
	animator   Animator
	dispatcher Dispatcher
	onError    func(error)

	assetID string
	raster  image.Image
	// original is the full size of the asset, loaded the size of raster.
	original geometry.Dimensions
	loaded   geometry.Dimensions
	loading  bool

	editor geometry.Dimensions
	dims   geometry.Dimensions
	view   View
	mode   Mode
	anim   *animation

	tr         transform.Transform
	crop       crop.State
	region     *crop.Region
	constraint float64

	initialFocal *geometry.Point
	focalState   *focal.State
	focalPt      focal.Point

	drag dragState
}

// New returns an editor with no image.
func New(opts ...Option) *Editor {
	e := &Editor{
		settings:   DefaultSettings(),
		animator:   Immediate{},
		dispatcher: Inline{},
		editor:     geometry.Dims(800, 600),
		tr:         transform.New(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.onError == nil {
		e.onError = func(err error) { log.Printf("editor: %v", err) }
	}
	return e
}

func (e *Editor) requestSize() int {
	if e.settings.MaxPixelSize > 0 {
		return e.settings.MaxPixelSize
	}
	return int(math.Ceil(math.Max(e.editor.Width, e.editor.Height)))
}

// Load fetches assetID and starts a fresh session for it. On failure the
// previous session is left untouched.
func (e *Editor) Load(ctx context.Context, assetID string) error {
	if e.src == nil {
		return fmt.Errorf("load %s: no image source", assetID)
	}
	if e.mode == ModeBusy {
		return ErrBusy
	}
	img, original, err := e.src.Load(ctx, assetID, e.requestSize())
	if err != nil {
		return fmt.Errorf("load %s: %w", assetID, err)
	}
	e.assetID = assetID
	e.SetImage(img, original)
	return nil
}

// SetImage starts a fresh session for img, which is a possibly downsized
// raster of an image of size original. A nil img is allowed when only the
// geometry is needed.
func (e *Editor) SetImage(img image.Image, original geometry.Dimensions) {
	if original.Empty() && img != nil {
		original = boundsDims(img)
	}
	e.raster = img
	e.original = original
	e.loaded = original
	if img != nil {
		e.loaded = boundsDims(img)
	}
	e.tr = transform.New()
	e.region = nil
	e.anim = nil
	e.mode = ModeIdle
	e.drag = dragState{}
	e.dims = transform.ScaledImageDimensions(e.original, e.editor)
	e.crop = crop.FullImage(e.dims)
	e.focalState = nil
	if e.initialFocal != nil {
		s := focal.FromRelative(e.initialFocal.X, e.initialFocal.Y, e.dims)
		e.focalState = &s
	}
	e.layout()
	if e.constraint > 0 {
		e.applyConstraint()
	}
}

func boundsDims(img image.Image) geometry.Dimensions {
	b := img.Bounds()
	return geometry.Dims(float64(b.Dx()), float64(b.Dy()))
}

func (e *Editor) isLoaded() bool { return !e.original.Empty() }

// ready is the precondition shared by all transforms.
func (e *Editor) ready() error {
	if !e.isLoaded() {
		return ErrNotLoaded
	}
	if e.mode == ModeBusy {
		return ErrBusy
	}
	return nil
}

// Mode reports whether a transform is animating.
func (e *Editor) Mode() Mode { return e.mode }

// Busy is shorthand for Mode() == ModeBusy.
func (e *Editor) Busy() bool { return e.mode == ModeBusy }

// View returns the current view.
func (e *Editor) View() View { return e.view }

// Transform returns a copy of the image transform.
func (e *Editor) Transform() transform.Transform { return e.tr }

// Image returns the loaded raster.
func (e *Editor) Image() image.Image { return e.raster }

// AssetID returns the identifier passed to Load.
func (e *Editor) AssetID() string { return e.assetID }

// OriginalDimensions returns the full size of the asset.
func (e *Editor) OriginalDimensions() geometry.Dimensions { return e.original }

// ImageDimensions returns the image size scaled to the editor.
func (e *Editor) ImageDimensions() geometry.Dimensions { return e.dims }

// EditorDimensions returns the canvas size.
func (e *Editor) EditorDimensions() geometry.Dimensions { return e.editor }

// Constraint returns the active aspect ratio, 0 when unconstrained.
func (e *Editor) Constraint() float64 { return e.constraint }

// CropState returns the normalized crop, including any live changes made in
// crop view.
func (e *Editor) CropState() crop.State {
	if e.region != nil {
		return crop.Capture(e.region.Rect, e.dims, e.tr.ZoomRatio, e.center())
	}
	return e.crop
}

// CropRect returns the live crop rectangle in editor pixels.
func (e *Editor) CropRect() geometry.Rect {
	if e.region != nil {
		return e.region.Rect
	}
	return crop.Restore(e.crop, e.dims, e.tr.ZoomRatio, e.center())
}

// FocalState returns the normalized focal point, or false if there is none.
func (e *Editor) FocalState() (focal.State, bool) {
	if e.focalState == nil {
		return focal.State{}, false
	}
	return *e.focalState, true
}

// FocalPoint returns the live focal marker.
func (e *Editor) FocalPoint() focal.Point { return e.focalPt }

// ImageQuad returns the editor-space corners of the displayed image.
func (e *Editor) ImageQuad() geometry.Quad { return e.tr.ImageQuad(e.dims, e.editor) }

func (e *Editor) center() geometry.Point {
	return geometry.Pt(e.editor.Width/2, e.editor.Height/2)
}

func (e *Editor) reportError(err error) {
	if e.onError != nil {
		e.onError(err)
	}
}
