package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/example/shineycrop/internal/crop"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/transform"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func sameCrop(a, b crop.State) bool {
	const tol = 1e-6
	return near(a.OffsetX, b.OffsetX, tol) && near(a.OffsetY, b.OffsetY, tol) &&
		near(a.Width, b.Width, tol) && near(a.Height, b.Height, tol)
}

func newLoaded(t *testing.T, opts ...Option) *Editor {
	t.Helper()
	opts = append([]Option{WithEditorSize(800, 600)}, opts...)
	e := New(opts...)
	e.SetImage(nil, geometry.Dims(1600, 800))
	if got := e.ImageDimensions(); got != geometry.Dims(800, 400) {
		t.Fatalf("scaled dimensions = %v", got)
	}
	return e
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func checkContained(t *testing.T, e *Editor, step string) {
	t.Helper()
	if !crop.Fits(e.CropRect(), e.ImageQuad()) {
		t.Fatalf("%s: crop %+v escaped image %v", step, e.CropRect(), e.ImageQuad())
	}
}

// manualAnimator holds transitions until the test finishes them.
type manualAnimator struct {
	step func(float64)
	done []func()
}

func (m *manualAnimator) Animate(_ time.Duration, step func(float64), done func()) {
	m.step = step
	m.done = append(m.done, done)
}

func (m *manualAnimator) finish() {
	for len(m.done) > 0 {
		d := m.done[0]
		m.done = m.done[1:]
		d()
	}
}

func TestTransformsBeforeLoad(t *testing.T) {
	e := New()
	if err := e.Rotate90(90); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Rotate90 before load = %v", err)
	}
	if err := e.ShowView(ViewCrop); err != nil {
		t.Fatalf("ShowView before load = %v", err)
	}
	if e.View() != ViewCrop {
		t.Fatalf("view not recorded")
	}
}

func TestInitialPayload(t *testing.T) {
	e := newLoaded(t)
	p := e.Payload()
	if p.CropData != nil || p.FocalPoint != nil {
		t.Fatalf("fresh payload should not carry crop or focal point: %+v", p)
	}
	if p.Zoom != 1 || p.ViewportRotation != 0 {
		t.Fatalf("unexpected payload %+v", p)
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "cropData") {
		t.Fatalf("full-image crop serialized: %s", b)
	}
	if !strings.Contains(string(b), `"imageDimensions":{"width":800,"height":400}`) {
		t.Fatalf("missing image dimensions: %s", b)
	}
}

func TestRotationIdempotence(t *testing.T) {
	e := newLoaded(t, WithInitialFocalPoint(0.75, 0.25))
	mustOK(t, e.ShowView(ViewCrop))
	if !e.BeginDrag(TargetResize, crop.HandleBR, geometry.Pt(800, 500)) {
		t.Fatalf("could not grab the corner")
	}
	e.PointerMove(geometry.Pt(700, 450))
	if !e.Frame() {
		t.Fatalf("resize rejected")
	}
	e.EndDrag()
	mustOK(t, e.ShowView(ViewNormal))

	before := e.CropState()
	focalBefore, _ := e.FocalState()
	for i := 0; i < 4; i++ {
		mustOK(t, e.Rotate90(90))
		checkContained(t, e, "rotate")
	}
	if r := e.Transform().Rotation; r != 0 {
		t.Fatalf("rotation after four turns = %d", r)
	}
	if after := e.CropState(); !sameCrop(after, before) {
		t.Fatalf("crop after four turns = %+v, want %+v", after, before)
	}
	focalAfter, _ := e.FocalState()
	if !near(focalAfter.OffsetX, focalBefore.OffsetX, 1e-9) || !near(focalAfter.OffsetY, focalBefore.OffsetY, 1e-9) {
		t.Fatalf("focal after four turns = %+v, want %+v", focalAfter, focalBefore)
	}
}

func TestFlipInvolution(t *testing.T) {
	e := newLoaded(t, WithInitialFocalPoint(0.6, 0.3))
	mustOK(t, e.Straighten(5))
	mustOK(t, e.Rotate90(90))
	tr := e.Transform()
	cs := e.CropState()
	fs, _ := e.FocalState()
	for _, axis := range []transform.Axis{transform.AxisX, transform.AxisY} {
		mustOK(t, e.Flip(axis))
		checkContained(t, e, "flip")
		mustOK(t, e.Flip(axis))
		if got := e.Transform(); got != tr {
			t.Fatalf("transform after double flip %v = %+v, want %+v", axis, got, tr)
		}
		if got := e.CropState(); !sameCrop(got, cs) {
			t.Fatalf("crop after double flip %v = %+v, want %+v", axis, got, cs)
		}
		if got, _ := e.FocalState(); got != fs {
			t.Fatalf("focal after double flip %v = %+v, want %+v", axis, got, fs)
		}
	}
}

func TestFlipWhenSwapped(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.Rotate90(90))
	mustOK(t, e.Flip(transform.AxisX))
	if f := e.Transform().Flip; f.X != 0 || f.Y != 1 {
		t.Fatalf("horizontal flip of a quarter turned image flipped %+v", f)
	}
}

func TestCropStaysInsideImage(t *testing.T) {
	e := newLoaded(t)
	steps := []struct {
		name string
		do   func() error
	}{
		{"straighten 10", func() error { return e.Straighten(10) }},
		{"rotate", func() error { return e.Rotate90(90) }},
		{"crop view", func() error { return e.ShowView(ViewCrop) }},
		{"drag", func() error {
			c := e.CropRect().Center()
			e.BeginDrag(TargetMove, crop.HandleNone, c)
			e.PointerMove(c.Add(geometry.Pt(-80, 35)))
			e.EndDrag()
			return nil
		}},
		{"straighten -20", func() error { return e.Straighten(-20) }},
		{"flip", func() error { return e.Flip(transform.AxisY) }},
		{"resize", func() error { e.Resize(1000, 700); return nil }},
		{"rotate back", func() error { return e.Rotate90(-90) }},
		{"square", func() error { return e.SetConstraint(1) }},
		{"straighten 33", func() error { return e.Straighten(33) }},
		{"normal view", func() error { return e.ShowView(ViewNormal) }},
		{"straighten -45", func() error { return e.Straighten(-45) }},
	}
	for _, s := range steps {
		mustOK(t, s.do())
		checkContained(t, e, s.name)
	}
}

func TestResizeKeepsCropInsideImage(t *testing.T) {
	for _, angle := range []float64{0, 7, -13} {
		e := New(WithEditorSize(800, 600))
		e.SetImage(nil, geometry.Dims(1333, 777))
		if angle != 0 {
			mustOK(t, e.Straighten(angle))
		}
		for w := 300.0; w <= 1400; w += 37 {
			e.Resize(w, 611)
			checkContained(t, e, fmt.Sprintf("angle %g, resize %gx611", angle, w))
		}
		mustOK(t, e.ShowView(ViewCrop))
		checkContained(t, e, fmt.Sprintf("angle %g, crop view", angle))
		for w := 1400.0; w >= 300; w -= 41 {
			e.Resize(w, 577)
			checkContained(t, e, fmt.Sprintf("angle %g, crop view resize %gx577", angle, w))
		}
		mustOK(t, e.ShowView(ViewNormal))
		checkContained(t, e, fmt.Sprintf("angle %g, normal view", angle))
	}
}

func TestResetCropReportsFallback(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	s := DefaultSettings()
	s.MaxCorrectionIterations = 1
	e := newLoaded(t, WithSettings(s))
	mustOK(t, e.Straighten(20))
	mustOK(t, e.ResetCrop())
	checkContained(t, e, "reset")
	if want := "reset crop: correction did not settle"; !strings.Contains(buf.String(), want) {
		t.Fatalf("expected log to contain %q, got %q", want, buf.String())
	}
}

func TestStraightenShrinksCrop(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.Straighten(10))
	p := e.Payload()
	if p.CropData == nil {
		t.Fatalf("straightened crop should be sent")
	}
	if p.CropData.Width >= 800 || p.CropData.Height >= 400 {
		t.Fatalf("crop was not shrunk: %+v", p.CropData)
	}
	if !near(p.CropData.Width/p.CropData.Height, 2, 1e-9) {
		t.Fatalf("correction changed the aspect ratio: %+v", p.CropData)
	}
	if p.StraightenAngle != 10 {
		t.Fatalf("straighten angle = %v", p.StraightenAngle)
	}
}

func TestStraightenRoundingAndClamp(t *testing.T) {
	e := newLoaded(t, WithSettings(Settings{RoundStraighten: true}))
	mustOK(t, e.Straighten(10.4))
	if a := e.Transform().StraightenAngle; a != 10 {
		t.Fatalf("rounded angle = %v", a)
	}
	mustOK(t, e.Straighten(60))
	if a := e.Transform().StraightenAngle; a != MaxStraighten {
		t.Fatalf("clamped angle = %v", a)
	}
}

func TestBusyRejectsTransforms(t *testing.T) {
	anim := &manualAnimator{}
	e := newLoaded(t, WithAnimator(anim), WithInitialFocalPoint(0.75, 0.25))
	mustOK(t, e.Rotate90(90))
	if !e.Busy() || e.Mode() != ModeBusy {
		t.Fatalf("editor should be busy while rotating")
	}
	if err := e.Flip(transform.AxisX); !errors.Is(err, ErrBusy) {
		t.Fatalf("Flip while busy = %v", err)
	}
	if err := e.Straighten(3); !errors.Is(err, ErrBusy) {
		t.Fatalf("Straighten while busy = %v", err)
	}
	if err := e.ShowView(ViewCrop); !errors.Is(err, ErrBusy) {
		t.Fatalf("ShowView while busy = %v", err)
	}
	if err := e.SetConstraint(1); !errors.Is(err, ErrBusy) {
		t.Fatalf("SetConstraint while busy = %v", err)
	}

	anim.step(0.5)
	if s := e.Scene(); !near(s.Angle, 45, 1e-9) || !s.Busy {
		t.Fatalf("mid-animation scene angle = %v busy = %v", s.Angle, s.Busy)
	}
	if fs, _ := e.FocalState(); fs.OffsetX != 200 || fs.OffsetY != -100 {
		t.Fatalf("focal point moved before the rotation finished: %+v", fs)
	}

	anim.finish()
	if e.Busy() {
		t.Fatalf("editor still busy after the animation")
	}
	if fs, _ := e.FocalState(); !near(fs.OffsetX, 100, 1e-9) || !near(fs.OffsetY, 200, 1e-9) {
		t.Fatalf("focal point after rotation = %+v", fs)
	}
	mustOK(t, e.Flip(transform.AxisX))
}

func TestAngleAnimatesShortWay(t *testing.T) {
	anim := &manualAnimator{}
	e := newLoaded(t, WithAnimator(anim))
	mustOK(t, e.Rotate90(-90))
	anim.step(0)
	if s := e.Scene(); !near(s.Angle, 360, 1e-9) {
		t.Fatalf("start angle = %v", s.Angle)
	}
	anim.step(1)
	if s := e.Scene(); !near(s.Angle, 270, 1e-9) {
		t.Fatalf("end angle = %v", s.Angle)
	}
	anim.finish()
}

func TestConstraintPayload(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.SetConstraint(1))
	p := e.Payload()
	if p.CropData == nil {
		t.Fatalf("square crop should be sent")
	}
	if !near(p.CropData.Width, 400, 1e-9) || !near(p.CropData.Height, 400, 1e-9) {
		t.Fatalf("square crop = %+v", p.CropData)
	}
	mustOK(t, e.SetConstraint(-2))
	if e.Constraint() != 0 {
		t.Fatalf("negative ratio should clear the constraint")
	}
}

func TestConstraintInCropView(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.ShowView(ViewCrop))
	mustOK(t, e.SetConstraint(0.5))
	r := e.CropRect()
	if !near(r.Width/r.Height, 0.5, 1e-9) {
		t.Fatalf("crop %+v does not honour 1:2", r)
	}
	checkContained(t, e, "constraint")
	if !e.BeginDrag(TargetResize, crop.HandleR, geometry.Pt(r.Right(), r.Center().Y)) {
		t.Fatalf("could not grab the right edge")
	}
	e.PointerMove(geometry.Pt(r.Right()-40, r.Center().Y))
	e.EndDrag()
	r = e.CropRect()
	if !near(r.Width/r.Height, 0.5, 1e-9) {
		t.Fatalf("constrained resize produced %+v", r)
	}
}

func TestPointerMovesAreCoalesced(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.SetConstraint(1))
	mustOK(t, e.ShowView(ViewCrop))
	if r := e.CropRect(); r != (geometry.Rect{Left: 200, Top: 100, Width: 400, Height: 400}) {
		t.Fatalf("crop view rect = %+v", r)
	}
	if got := e.BeginDragAt(geometry.Pt(400, 300)); got != TargetMove {
		t.Fatalf("hit test = %v", got)
	}
	e.PointerMove(geometry.Pt(410, 300))
	e.PointerMove(geometry.Pt(420, 300))
	e.PointerMove(geometry.Pt(450, 300))
	if r := e.CropRect(); r.Left != 200 {
		t.Fatalf("pointer move applied before the frame: %+v", r)
	}
	if !e.Frame() {
		t.Fatalf("frame did not apply the drag")
	}
	if r := e.CropRect(); r.Left != 250 || r.Top != 100 {
		t.Fatalf("after frame crop = %+v", r)
	}
	if e.Frame() {
		t.Fatalf("second frame without movement changed geometry")
	}
	e.EndDrag()
	if e.Dragging() {
		t.Fatalf("drag still active")
	}
}

func TestResizeKeepsProportions(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.SetConstraint(1.5))
	mustOK(t, e.ShowView(ViewCrop))
	c := e.CropRect().Center()
	e.BeginDrag(TargetMove, crop.HandleNone, c)
	e.PointerMove(c.Add(geometry.Pt(-40, 0)))
	e.EndDrag()
	before := e.CropState()

	e.Resize(400, 300)
	if got := e.ImageDimensions(); got != geometry.Dims(400, 200) {
		t.Fatalf("scaled dimensions after resize = %v", got)
	}
	after := e.CropState().Rescale(before.ImageDimensions)
	if !sameCrop(after, before) {
		t.Fatalf("crop after resize = %+v, want %+v", after, before)
	}
	checkContained(t, e, "resize")

	e.Resize(0, 300)
	if e.EditorDimensions() != geometry.Dims(400, 300) {
		t.Fatalf("zero size resize was applied")
	}
}

func TestFocalPointHiddenOutsideCrop(t *testing.T) {
	e := newLoaded(t, WithInitialFocalPoint(0.875, 0.5))
	mustOK(t, e.SetConstraint(1))
	mustOK(t, e.ShowView(ViewCrop))
	s := e.Scene()
	if s.Focal == nil || s.Focal.Opacity != 0 {
		t.Fatalf("focal point outside the crop should be hidden: %+v", s.Focal)
	}
	if s.Focal.Pos != geometry.Pt(700, 300) {
		t.Fatalf("hidden focal point was moved to %v", s.Focal.Pos)
	}
	mustOK(t, e.ShowView(ViewNormal))
	if e.Scene().Focal.Opacity != 1 {
		t.Fatalf("focal point inside the viewport should be visible")
	}
	mustOK(t, e.ShowView(ViewCrop))
	mustOK(t, e.ResetFocalPoint())
	if p := e.FocalPoint(); !p.Visible || p.Pos != geometry.Pt(400, 300) {
		t.Fatalf("reset focal point = %+v", p)
	}
}

func TestFocalDrag(t *testing.T) {
	e := newLoaded(t)
	mustOK(t, e.ToggleFocalPoint())
	fp := e.FocalPoint()
	if fp.Pos != geometry.Pt(400, 300) {
		t.Fatalf("new focal point at %v", fp.Pos)
	}
	if got := e.BeginDragAt(fp.Pos); got != TargetFocal {
		t.Fatalf("hit test on the marker = %v", got)
	}
	e.PointerMove(geometry.Pt(500, 250))
	e.EndDrag()
	fs, _ := e.FocalState()
	if fs.OffsetX != 100 || fs.OffsetY != -50 {
		t.Fatalf("focal state after drag = %+v", fs)
	}
	e.BeginDrag(TargetFocal, crop.HandleNone, geometry.Pt(500, 250))
	e.PointerMove(geometry.Pt(900, 250))
	e.EndDrag()
	if fs2, _ := e.FocalState(); fs2 != fs {
		t.Fatalf("drag outside the viewport moved the focal point to %+v", fs2)
	}
	mustOK(t, e.ToggleFocalPoint())
	if e.Payload().FocalPoint != nil {
		t.Fatalf("toggled off focal point still in payload")
	}
}

func TestSceneCropOverlay(t *testing.T) {
	e := newLoaded(t)
	if e.Scene().Crop != nil {
		t.Fatalf("normal view should not draw the crop")
	}
	mustOK(t, e.ShowView(ViewCrop))
	s := e.Scene()
	if s.Crop == nil || len(s.Crop.Handles) != 8 || len(s.Crop.Grid) != 4 {
		t.Fatalf("crop overlay = %+v", s.Crop)
	}
	if s.Viewport != (geometry.Rect{Width: 800, Height: 600}) {
		t.Fatalf("crop view viewport = %+v", s.Viewport)
	}
	mustOK(t, e.ShowView(ViewRotate))
	if s := e.Scene(); len(s.Grid) != 14 || s.Crop != nil {
		t.Fatalf("rotate view grid = %d lines", len(s.Grid))
	}
}

func TestParseView(t *testing.T) {
	for _, v := range []View{ViewNormal, ViewRotate, ViewCrop} {
		got, err := ParseView(v.String())
		if err != nil || got != v {
			t.Fatalf("ParseView(%q) = %v, %v", v, got, err)
		}
	}
	if _, err := ParseView("zoom"); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

type fakeSource struct {
	original geometry.Dimensions
	sizes    []int
	fail     error
}

func (f *fakeSource) Load(_ context.Context, _ string, maxPixelSize int) (image.Image, geometry.Dimensions, error) {
	f.sizes = append(f.sizes, maxPixelSize)
	if f.fail != nil {
		return nil, geometry.Dimensions{}, f.fail
	}
	r := math.Min(1, float64(maxPixelSize)/math.Max(f.original.Width, f.original.Height))
	w := int(math.Round(f.original.Width * r))
	h := int(math.Round(f.original.Height * r))
	return image.NewRGBA(image.Rect(0, 0, w, h)), f.original, nil
}

type queueDispatcher struct {
	jobs [][2]func()
}

func (q *queueDispatcher) Dispatch(work, done func()) {
	q.jobs = append(q.jobs, [2]func(){work, done})
}

func (q *queueDispatcher) run() {
	for len(q.jobs) > 0 {
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		j[0]()
		j[1]()
	}
}

func TestReloadIsGuarded(t *testing.T) {
	src := &fakeSource{original: geometry.Dims(4000, 2000)}
	q := &queueDispatcher{}
	e := New(WithSource(src), WithDispatcher(q), WithEditorSize(800, 600))
	mustOK(t, e.Load(context.Background(), "photo.png"))
	if got := e.LoadedDimensions(); got != geometry.Dims(800, 400) {
		t.Fatalf("initial raster = %v", got)
	}
	e.Resize(1000, 700)
	if len(q.jobs) != 0 {
		t.Fatalf("reload requested for a small growth")
	}
	e.Resize(1600, 1200)
	if len(q.jobs) != 1 || !e.Reloading() {
		t.Fatalf("expected one reload, have %d", len(q.jobs))
	}
	e.Resize(2000, 1500)
	if len(q.jobs) != 1 {
		t.Fatalf("reload issued while another was in flight")
	}
	q.run()
	if e.Reloading() {
		t.Fatalf("reload still marked in flight")
	}
	if got := e.LoadedDimensions(); got != geometry.Dims(1600, 800) {
		t.Fatalf("reloaded raster = %v", got)
	}
	if len(src.sizes) != 2 || src.sizes[1] != 1600 {
		t.Fatalf("source requests = %v", src.sizes)
	}
}

func TestReloadFailureKeepsState(t *testing.T) {
	src := &fakeSource{original: geometry.Dims(4000, 2000)}
	var reported []error
	e := New(WithSource(src), WithEditorSize(800, 600), WithErrorHandler(func(err error) { reported = append(reported, err) }))
	mustOK(t, e.Load(context.Background(), "photo.png"))
	mustOK(t, e.Straighten(7))
	before := e.Payload()
	src.fail = errors.New("network down")
	e.Resize(1600, 1200)
	if len(reported) != 1 || !errors.Is(reported[0], src.fail) {
		t.Fatalf("reported errors = %v", reported)
	}
	if e.LoadedDimensions() != geometry.Dims(800, 400) {
		t.Fatalf("failed reload replaced the raster")
	}
	after := e.Payload()
	if after.StraightenAngle != before.StraightenAngle || !sameCrop(after.Crop().Rescale(before.ImageDimensions), before.Crop()) {
		t.Fatalf("failed reload changed the edit: %+v vs %+v", after, before)
	}
}

func TestLoadFailure(t *testing.T) {
	fail := errors.New("missing")
	e := New(WithSource(&fakeSource{fail: fail}))
	err := e.Load(context.Background(), "gone.png")
	if !errors.Is(err, fail) {
		t.Fatalf("Load error = %v", err)
	}
	if e.Rotate90(90) != ErrNotLoaded {
		t.Fatalf("failed load should leave the editor empty")
	}
}
