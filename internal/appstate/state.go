// Package appstate hosts an editor session in a shiny window.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shineycrop/internal/editor"
	"github.com/example/shineycrop/internal/geometry"
	"github.com/example/shineycrop/internal/notify"
	"github.com/example/shineycrop/internal/render"
	"github.com/example/shineycrop/internal/theme"
)

// frameDropThreshold caps how many in-flight frames in a row may be
// cancelled in favour of a newer one.
const frameDropThreshold = 10

const messageDuration = 2 * time.Second

// Preset is a named crop aspect ratio.
type Preset struct {
	Name  string
	Ratio float64
}

// AppState holds the window's view of one editing session.
type AppState struct {
	Editor *editor.Editor
	Theme  *theme.Theme
	// Original returns the full resolution image used for save and copy.
	Original func() (image.Image, error)
	SaveDir  string
	Format   render.Format
	Quality  int
	Presets  []Preset
	Notifier *notify.Notifier

	shell     *Shell
	presetIdx int
	message   string
	msgUntil  time.Time
	quit      bool

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the overlay colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithOriginal sets how the full resolution image is fetched.
func WithOriginal(fn func() (image.Image, error)) Option {
	return func(a *AppState) { a.Original = fn }
}

// WithSaveDir sets where Save writes the payload and export.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.SaveDir = dir } }

// WithFormat sets the export format and JPEG quality.
func WithFormat(f render.Format, quality int) Option {
	return func(a *AppState) { a.Format, a.Quality = f, quality }
}

// WithPresets sets the aspect ratios cycled by the aspect shortcut.
func WithPresets(p []Preset) Option { return func(a *AppState) { a.Presets = p } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithShell attaches the Shell the editor was built with so animations and
// reloads run against the window.
func WithShell(s *Shell) Option { return func(a *AppState) { a.shell = s } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState for ed.
func New(ed *editor.Editor, opts ...Option) *AppState {
	a := &AppState{Editor: ed, SaveDir: "."}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.shell == nil {
		a.shell = NewShell()
	}
	for i, p := range a.Presets {
		if p.Ratio == ed.Constraint() {
			a.presetIdx = i + 1
		}
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.shell.attach(nil)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	ed := a.Editor.EditorDimensions()
	width := int(ed.Width)
	height := int(ed.Height) + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "ShineyCrop"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	a.shell.attach(w.Send)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stop := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case uiFunc:
			e()
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stop()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			a.Editor.Resize(float64(width), float64(height-statusHeight))
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := a.paintState(width, height)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if a.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if a.handleKey(e) {
				w.Send(paint.Event{})
			}
			if a.quit {
				stop()
				return
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

// paintState applies the pending pointer position and snapshots what the
// next frame shows.
func (a *AppState) paintState(width, height int) paintState {
	a.Editor.Frame()
	st := paintState{
		width:  width,
		height: height,
		scene:  a.Editor.Scene(),
		img:    a.Editor.Image(),
		theme:  a.Theme,
		status: a.status(),
		hints:  shortcutHints(),
	}
	if a.message != "" && time.Now().Before(a.msgUntil) {
		st.message = a.message
	}
	return st
}

// handleKey runs the action bound to e and reports whether a repaint is
// needed.
func (a *AppState) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	act, ok := lookupAction(e)
	if !ok {
		return false
	}
	a.perform(act)
	return true
}

func (a *AppState) perform(act *action) {
	err := act.run(a)
	switch {
	case err == nil:
	case errors.Is(err, editor.ErrBusy):
	default:
		log.Printf("%s: %v", act.name, err)
		a.flash(fmt.Sprintf("%s failed: %v", act.name, err))
	}
}

// handleMouse drives crop and focal drags and reports whether a repaint is
// needed. Moves only record the pointer; the next paint applies it.
func (a *AppState) handleMouse(e mouse.Event) bool {
	p := geometry.Pt(float64(e.X), float64(e.Y))
	ed := a.Editor
	switch {
	case e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown:
		if ed.View() != editor.ViewRotate || e.Direction == mouse.DirRelease {
			return false
		}
		step := float64(straightenStep)
		if e.Button == mouse.ButtonWheelDown {
			step = -step
		}
		if err := a.nudge(step); err != nil && !errors.Is(err, editor.ErrBusy) {
			log.Printf("straighten: %v", err)
		}
		return true
	case e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft:
		if a.message != "" {
			a.msgUntil = time.Time{}
		}
		return ed.BeginDragAt(p) != editor.TargetNone
	case e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft:
		if !ed.Dragging() {
			return false
		}
		ed.PointerMove(p)
		ed.EndDrag()
		return true
	case e.Direction == mouse.DirNone:
		if !ed.Dragging() {
			return false
		}
		ed.PointerMove(p)
		return true
	}
	return false
}

func (a *AppState) flash(msg string) {
	a.message = msg
	a.msgUntil = time.Now().Add(messageDuration)
}

func (a *AppState) nudge(delta float64) error {
	tr := a.Editor.Transform()
	return a.Editor.Straighten(tr.StraightenAngle + delta)
}

func (a *AppState) toggleCrop() error {
	if a.Editor.View() == editor.ViewCrop {
		return a.Editor.ShowView(editor.ViewNormal)
	}
	return a.Editor.ShowView(editor.ViewCrop)
}

// cycleConstraint steps through free and then each preset.
func (a *AppState) cycleConstraint() error {
	next := (a.presetIdx + 1) % (len(a.Presets) + 1)
	ratio, name := 0.0, "free"
	if next > 0 {
		ratio, name = a.Presets[next-1].Ratio, a.Presets[next-1].Name
	}
	if err := a.Editor.SetConstraint(ratio); err != nil {
		return err
	}
	a.presetIdx = next
	a.flash("aspect " + name)
	return nil
}

func (a *AppState) constraintName() string {
	if a.presetIdx > 0 && a.presetIdx <= len(a.Presets) {
		return a.Presets[a.presetIdx-1].Name
	}
	if r := a.Editor.Constraint(); r > 0 {
		return fmt.Sprintf("%.3g", r)
	}
	return "free"
}

func (a *AppState) status() string {
	tr := a.Editor.Transform()
	s := fmt.Sprintf("%s  %d°  %+.1f°  aspect %s", a.Editor.View(), int(tr.Rotation), tr.StraightenAngle, a.constraintName())
	if a.Editor.Reloading() {
		s += "  loading"
	}
	return s
}
