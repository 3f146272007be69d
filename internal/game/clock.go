package game

import "time"

// Clock measures the wall time between frames and clamps it so a stall
// never produces a huge simulation step.
type Clock struct {
	now          func() time.Time
	prev, curr   time.Time
	maxFrameTime float64 // milliseconds
}

// NewClock creates a clock starting now. A nil now uses time.Now.
func NewClock(now func() time.Time, maxFrameTime float64) *Clock {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Clock{now: now, prev: t, curr: t, maxFrameTime: maxFrameTime}
}

// Delta advances the clock and returns the clamped frame time in seconds.
func (c *Clock) Delta() float64 {
	c.curr = c.now()
	elapsed := float64(c.curr.Sub(c.prev)) / float64(time.Millisecond)
	c.prev = c.curr

	if elapsed > c.maxFrameTime {
		elapsed = c.maxFrameTime
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed * 1e-3
}

// Reset makes the next delta measure from now.
func (c *Clock) Reset() {
	c.prev = c.now()
	c.curr = c.prev
}
