package editor

import (
	"time"

	"github.com/example/shineycrop/internal/geometry"
)

// Animator runs a transition. step receives progress in [0,1] and done must
// be called exactly once when the transition has finished. Both callbacks
// have to run on the editor's event loop.
type Animator interface {
	Animate(d time.Duration, step func(t float64), done func())
}

// Immediate completes every animation synchronously.
type Immediate struct{}

func (Immediate) Animate(_ time.Duration, step func(float64), done func()) {
	step(1)
	done()
}

// Dispatcher runs blocking work away from the event loop and delivers the
// completion back onto it.
type Dispatcher interface {
	Dispatch(work func(), done func())
}

// Inline runs work and done in the caller.
type Inline struct{}

func (Inline) Dispatch(work func(), done func()) {
	work()
	done()
}

// animation remembers where a transition started; the end is always the
// editor's current state.
type animation struct {
	angle float64
	zoom  float64
	crop  geometry.Rect
	t     float64
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpRect(a, b geometry.Rect, t float64) geometry.Rect {
	return geometry.Rect{
		Left:   lerp(a.Left, b.Left, t),
		Top:    lerp(a.Top, b.Top, t),
		Width:  lerp(a.Width, b.Width, t),
		Height: lerp(a.Height, b.Height, t),
	}
}
