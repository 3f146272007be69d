package game

import (
	"image/color"
	"math"

	"antimatter/internal/input"
	"antimatter/internal/render"
)

const (
	PlayerRadius = 1.0
	PlayerThrust = 400.0 // Force applied per held control
	PlayerSpeed  = 20.0  // Speed when moving without a body
)

// Player is the entity steered by the input controls.
type Player struct {
	Object

	Radius  float64
	Thrust  float64
	Fill    color.NRGBA
	HitFill color.NRGBA

	emotion Emotion
}

// NewPlayer creates a matter player at x, y.
func NewPlayer(x, y float64) *Player {
	p := &Player{
		Radius:  PlayerRadius,
		Thrust:  PlayerThrust,
		Fill:    color.NRGBA{255, 255, 255, 255},
		HitFill: color.NRGBA{255, 96, 96, 255},
	}
	p.X, p.Y = x, y
	p.Material = Matter
	p.Emotion = &p.emotion
	return p
}

// BodyDef returns the body a level builds for the player.
func (p *Player) BodyDef() BodyDef {
	return BodyDef{
		Owner:         p,
		Kind:          BodyDynamic,
		X:             p.X,
		Y:             p.Y,
		LinearDamping: 1.0,
		Shapes: []ShapeDef{{
			Kind:        ShapeCircle,
			Radius:      p.Radius,
			Density:     1.0,
			Friction:    0.5,
			Restitution: 0.2,
			Category:    p.Material,
		}},
	}
}

// direction returns the unit steering vector from the held controls.
func direction(in *input.Input) (float64, float64) {
	var dx, dy float64
	if in.Control(input.ControlLeft) {
		dx--
	}
	if in.Control(input.ControlRight) {
		dx++
	}
	if in.Control(input.ControlUp) {
		dy--
	}
	if in.Control(input.ControlDown) {
		dy++
	}
	if l := math.Hypot(dx, dy); l > 0 {
		dx, dy = dx/l, dy/l
	}
	return dx, dy
}

func (p *Player) Update(dt float64) {
	g := p.Game()
	if g == nil {
		return
	}

	dx, dy := direction(g.Input())
	if b := p.Body(); b != nil {
		if dx != 0 || dy != 0 {
			b.ApplyForce(dx*p.Thrust, dy*p.Thrust)
		}
		p.SyncFromBody()
		return
	}

	p.X += dx * PlayerSpeed * dt
	p.Y += dy * PlayerSpeed * dt
}

func (p *Player) Draw(s render.Surface) {
	fill := p.Fill
	if p.emotion.State() == EmotionHit {
		fill = p.HitFill
	}

	s.Push()
	s.Translate(p.X, p.Y)
	s.Rotate(p.Angle)

	s.SetColor(fill)
	s.DrawCircle(0, 0, p.Radius)
	s.Fill()

	// Eyes.
	eye := p.Radius * 0.15
	s.SetColor(color.Black)
	s.DrawCircle(-p.Radius*0.35, -p.Radius*0.2, eye)
	s.DrawCircle(p.Radius*0.35, -p.Radius*0.2, eye)
	s.Fill()

	// Mouth: flat when normal, open when hit.
	s.SetLineWidth(0.1)
	if p.emotion.State() == EmotionHit {
		s.DrawCircle(0, p.Radius*0.35, p.Radius*0.2)
		s.Fill()
	} else {
		s.DrawLine(-p.Radius*0.3, p.Radius*0.35, p.Radius*0.3, p.Radius*0.35)
		s.Stroke()
	}

	s.Pop()
}
