package game

import (
	"sync"
	"time"
)

// Timer is a cancellable delayed callback.
type Timer interface {
	// Stop prevents the callback from running if it has not run yet.
	Stop() bool
}

// Scheduler runs fn once after d. Implementations must deliver fn on the
// frame goroutine, normally by posting it to the loop mailbox.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// FrameScheduler asks the host for one more frame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Mailbox is a multi-producer queue of closures drained by the frame goroutine.
type Mailbox struct {
	mu      sync.Mutex
	pending []func()
}

// Post queues fn.
func (m *Mailbox) Post(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Drain runs every queued closure in posting order and returns how many ran.
// Closures posted while draining run in the next drain.
func (m *Mailbox) Drain() int {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Len returns the number of queued closures.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
