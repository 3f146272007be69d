// Package input collects key and touch events from any goroutine and exposes
// a per-frame snapshot of them to the frame loop.
package input

import (
	"image/color"
	"sync"

	"antimatter/internal/render"
)

// Touch is an active touch point in surface coordinates.
type Touch struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Input buffers events as they arrive and latches them once per frame in Update.
// Key and Control are only read from the frame goroutine.
type Input struct {
	width, height float64

	mu           sync.Mutex
	pendingKeys  map[int]bool
	pendingTouch map[int]Touch

	keys     map[int]bool
	touches  []Touch
	controls [controlCount]bool
}

// New creates an input source for a surface of the given size.
func New(width, height int) *Input {
	return &Input{
		width:        float64(width),
		height:       float64(height),
		pendingKeys:  make(map[int]bool),
		pendingTouch: make(map[int]Touch),
		keys:         make(map[int]bool),
	}
}

// KeyDown records a key press.
func (in *Input) KeyDown(code int) {
	in.mu.Lock()
	in.pendingKeys[code] = true
	in.mu.Unlock()
}

// KeyUp records a key release.
func (in *Input) KeyUp(code int) {
	in.mu.Lock()
	delete(in.pendingKeys, code)
	in.mu.Unlock()
}

// TouchStart records a new or moved touch point.
func (in *Input) TouchStart(id int, x, y float64) {
	in.mu.Lock()
	in.pendingTouch[id] = Touch{ID: id, X: x, Y: y}
	in.mu.Unlock()
}

// TouchMove is an alias of TouchStart.
func (in *Input) TouchMove(id int, x, y float64) {
	in.TouchStart(id, x, y)
}

// TouchEnd releases a touch point.
func (in *Input) TouchEnd(id int) {
	in.mu.Lock()
	delete(in.pendingTouch, id)
	in.mu.Unlock()
}

// Blur releases every key, touch and control, as when the window loses focus.
func (in *Input) Blur() {
	in.mu.Lock()
	clear(in.pendingKeys)
	clear(in.pendingTouch)
	in.mu.Unlock()
}

// Update latches the buffered events for this frame and derives controls.
func (in *Input) Update(dt float64) {
	in.mu.Lock()
	clear(in.keys)
	for code, down := range in.pendingKeys {
		in.keys[code] = down
	}
	in.touches = in.touches[:0]
	for _, t := range in.pendingTouch {
		in.touches = append(in.touches, t)
	}
	in.mu.Unlock()

	in.controls = [controlCount]bool{}
	for code, down := range in.keys {
		if c, ok := keyControls[code]; ok && down {
			in.controls[c] = true
		}
	}
	for _, t := range in.touches {
		for _, c := range in.touchControls(t) {
			in.controls[c] = true
		}
	}
}

// touchControls maps a touch to the pads drawn by Draw: the left third of the
// surface steers left/right, the right third thrusts up/down.
func (in *Input) touchControls(t Touch) []Control {
	third := in.width / 3
	switch {
	case t.X < third:
		if t.X < third/2 {
			return []Control{ControlLeft}
		}
		return []Control{ControlRight}
	case t.X > 2*third:
		if t.Y < in.height/2 {
			return []Control{ControlUp}
		}
		return []Control{ControlDown}
	}
	return nil
}

// Key reports whether a key was held when the frame started.
func (in *Input) Key(code int) bool {
	return in.keys[code]
}

// Control reports whether a control was active when the frame started.
func (in *Input) Control(c Control) bool {
	if c >= controlCount {
		return false
	}
	return in.controls[c]
}

// Touches returns the touch points latched this frame.
func (in *Input) Touches() []Touch {
	return in.touches
}

// Draw renders the touch pads while a touch is active.
func (in *Input) Draw(s render.Surface) {
	if len(in.touches) == 0 {
		return
	}

	third := in.width / 3
	s.Push()
	s.SetColor(render.Touch)
	s.DrawRectangle(0, 0, third, in.height)
	s.Fill()
	s.DrawRectangle(2*third, 0, third, in.height)
	s.Fill()
	s.SetColor(color.White)
	for _, t := range in.touches {
		s.DrawCircle(t.X, t.Y, 12)
		s.Fill()
	}
	s.Pop()
}
