package host

import (
	"sync/atomic"
	"time"

	"antimatter/internal/game"
)

// Poster accepts closures for the frame goroutine. *game.Loop satisfies it.
type Poster interface {
	Post(fn func())
}

// Scheduler runs delayed callbacks on the frame goroutine: the timer fires
// on its own goroutine and only posts the callback.
type Scheduler struct {
	poster Poster
}

// NewScheduler creates a scheduler that delivers through p.
func NewScheduler(p Poster) *Scheduler {
	return &Scheduler{poster: p}
}

type postedTimer struct {
	t       *time.Timer
	stopped atomic.Bool
}

// Stop prevents the callback from running, even if it was already posted.
func (pt *postedTimer) Stop() bool {
	if pt.stopped.Swap(true) {
		return false
	}
	return pt.t.Stop()
}

// AfterFunc schedules fn to run on the frame goroutine after d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) game.Timer {
	pt := &postedTimer{}
	pt.t = time.AfterFunc(d, func() {
		s.poster.Post(func() {
			if pt.stopped.Load() {
				return
			}
			fn()
		})
	})
	return pt
}

// PostFunc adapts a function to Poster, for wiring a scheduler before the
// loop it posts to exists.
type PostFunc func(fn func())

// Post calls f(fn).
func (f PostFunc) Post(fn func()) {
	f(fn)
}
