package appstate

import (
	"sync"
	"time"
)

// frameInterval paces animation ticks.
const frameInterval = 16 * time.Millisecond

// uiFunc is delivered through the window's event queue and run on the UI
// goroutine.
type uiFunc func()

// Shell runs editor animations and reloads against the window event loop.
// Until a window is attached it behaves like editor.Immediate and
// editor.Inline.
type Shell struct {
	mu   sync.Mutex
	send func(any)
}

// NewShell returns a detached Shell.
func NewShell() *Shell { return &Shell{} }

func (s *Shell) attach(send func(any)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *Shell) sender() func(any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send
}

// post queues fn for the UI goroutine. It reports false when no window is
// attached.
func (s *Shell) post(fn func()) bool {
	send := s.sender()
	if send == nil {
		return false
	}
	send(uiFunc(fn))
	return true
}

// Animate ticks step from the UI goroutine until d has elapsed.
func (s *Shell) Animate(d time.Duration, step func(float64), done func()) {
	if d <= 0 || s.sender() == nil {
		step(1)
		done()
		return
	}
	start := time.Now()
	go func() {
		tick := time.NewTicker(frameInterval)
		defer tick.Stop()
		for range tick.C {
			t := float64(time.Since(start)) / float64(d)
			if t >= 1 {
				s.post(func() {
					step(1)
					done()
				})
				return
			}
			if !s.post(func() { step(t) }) {
				return
			}
		}
	}()
}

// Dispatch runs work on its own goroutine and done on the UI goroutine.
func (s *Shell) Dispatch(work func(), done func()) {
	if s.sender() == nil {
		work()
		done()
		return
	}
	go func() {
		work()
		s.post(done)
	}()
}
