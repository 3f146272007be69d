package game

import "time"

// EmotionState is a player's face.
type EmotionState uint8

const (
	EmotionNormal EmotionState = iota
	EmotionHit
)

func (s EmotionState) String() string {
	if s == EmotionHit {
		return "hit"
	}
	return "normal"
}

// Emotion is the NORMAL -> HIT -> NORMAL state of a player with at most one
// pending reset. Only touched on the frame goroutine.
type Emotion struct {
	state EmotionState
	timer Timer
}

// State returns the current emotion.
func (e *Emotion) State() EmotionState {
	return e.state
}

// Pending reports whether a reset is scheduled.
func (e *Emotion) Pending() bool {
	return e.timer != nil
}

// Hit switches to HIT and (re)starts the reset timer, so the player returns
// to NORMAL d after the latest hit. With a nil scheduler nothing is
// scheduled and the state stays HIT until Reset.
func (e *Emotion) Hit(s Scheduler, d time.Duration) {
	e.state = EmotionHit
	e.Cancel()
	if s == nil {
		return
	}

	var t Timer
	t = s.AfterFunc(d, func() {
		// A superseded timer may already have been queued before Stop.
		if e.timer != t {
			return
		}
		e.state = EmotionNormal
		e.timer = nil
	})
	e.timer = t
}

// Cancel stops the pending reset, if any. The state is left as is.
func (e *Emotion) Cancel() {
	if e.timer == nil {
		return
	}
	e.timer.Stop()
	e.timer = nil
}

// Reset cancels the pending reset and returns to NORMAL.
func (e *Emotion) Reset() {
	e.Cancel()
	e.state = EmotionNormal
}
