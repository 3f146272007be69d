package game

import (
	"image/color"

	"antimatter/internal/render"
)

// TriggerState records the first compatible entity that touched a trigger.
type TriggerState struct {
	Active bool     // Set by Activate only; contacts never change it
	Mask   Material // Materials the trigger reacts to
	Object Entity   // First matching entity, set once
}

// Match records e as the matched object if the trigger is inactive, has no
// match yet and e's material intersects the mask.
func (t *TriggerState) Match(e Entity) bool {
	if t.Active || t.Object != nil || e == nil {
		return false
	}
	if !Compatible(t.Mask, e.Base().Material) {
		return false
	}
	t.Object = e
	return true
}

// Matched reports whether an object matched and the trigger is not active yet.
func (t *TriggerState) Matched() bool {
	return t.Object != nil && !t.Active
}

// Activate marks a matched trigger active and reports whether it changed.
// A trigger with no matched object stays inactive.
func (t *TriggerState) Activate() bool {
	if t.Object == nil || t.Active {
		return false
	}
	t.Active = true
	return true
}

// Trigger is a rectangular sensor area.
type Trigger struct {
	Object

	Width, Height float64
	Stroke        color.NRGBA
	LineWidth     float64

	// OnMatch runs once, on the frame after a match, outside the physics step.
	OnMatch func(t *Trigger)

	state    TriggerState
	notified bool
}

// NewTrigger creates a trigger centered on x, y that reacts to mask.
func NewTrigger(x, y, width, height float64, mask Material) *Trigger {
	t := &Trigger{
		Width:     width,
		Height:    height,
		Stroke:    color.NRGBA{255, 255, 255, 255},
		LineWidth: 0.2,
	}
	t.X, t.Y = x, y
	t.Material = mask
	t.state.Mask = mask
	t.Trigger = &t.state
	return t
}

// State returns the trigger's state.
func (t *Trigger) State() *TriggerState {
	return &t.state
}

func (t *Trigger) Update(dt float64) {
	t.SyncFromBody()
	if t.state.Matched() && !t.notified {
		t.notified = true
		if t.OnMatch != nil {
			t.OnMatch(t)
		}
	}
}

func (t *Trigger) Draw(s render.Surface) {
	s.Push()
	s.Translate(t.X, t.Y)
	s.Rotate(t.Angle)
	s.DrawRectangle(-t.Width/2, -t.Height/2, t.Width, t.Height)
	switch {
	case t.state.Active:
		s.SetColor(render.WithAlpha(t.Stroke, 0.5))
		s.Fill()
	case t.state.Matched():
		s.SetColor(render.WithAlpha(t.Stroke, 0.25))
		s.Fill()
	default:
		s.SetColor(t.Stroke)
		s.SetLineWidth(t.LineWidth)
		s.Stroke()
	}
	s.Pop()
}
