package game

import (
	"image/color"
	"log"
	"math"

	"antimatter/internal/render"
)

// Emitter spawns short-lived physics particles along a segment.
type Emitter struct {
	Object

	Rate     float64 // Seconds between particles
	LifeTime float64 // Particle lifetime, in seconds
	Speed    float64 // Launch speed along the emitter angle

	// SpawnArea is a segment x1, y1, x2, y2 in emitter space.
	SpawnArea [4]float64

	Particle        ShapeDef
	ParticleStroke  color.NRGBA
	AngularVelocity float64
	LinearDamping   float64

	Stroke    color.NRGBA
	LineWidth float64

	running     bool
	delay       float64
	accumulator float64
	spawned     int
}

// NewEmitter creates a stopped emitter at x, y.
func NewEmitter(x, y float64) *Emitter {
	e := &Emitter{
		Rate:      0.4,
		LifeTime:  2.0,
		Speed:     10,
		SpawnArea: [4]float64{0, -2, 0, 2},
		Particle: ShapeDef{
			Kind:   ShapeCircle,
			Radius: 0.5,
		},
		ParticleStroke: color.NRGBA{255, 255, 255, 255},
		Stroke:         color.NRGBA{255, 255, 255, 255},
		LineWidth:      0.2,
	}
	e.X, e.Y = x, y
	return e
}

// Start begins emitting after delay seconds.
func (e *Emitter) Start(delay float64) {
	e.running = true
	e.delay = delay
	e.accumulator = 0
}

// Stop halts emission. Live particles are unaffected.
func (e *Emitter) Stop() {
	e.running = false
}

// Running reports whether the emitter is started.
func (e *Emitter) Running() bool {
	return e.running
}

// Spawned returns how many particles were emitted.
func (e *Emitter) Spawned() int {
	return e.spawned
}

func (e *Emitter) Update(dt float64) {
	if !e.running || e.Rate <= 0 {
		return
	}
	if e.delay > 0 {
		e.delay -= dt
		if e.delay > 0 {
			return
		}
		dt = -e.delay
		e.delay = 0
	}

	e.accumulator += dt
	for e.accumulator >= e.Rate {
		e.accumulator -= e.Rate
		e.emit()
	}
}

func (e *Emitter) emit() {
	g := e.Game()
	if g == nil || g.World() == nil {
		return
	}

	// Random point on the spawn segment, rotated into world space.
	t := g.Rand().Float64()
	a := e.SpawnArea
	lx := a[0] + (a[2]-a[0])*t
	ly := a[1] + (a[3]-a[1])*t
	sin, cos := math.Sincos(e.Angle)
	x := e.X + lx*cos - ly*sin
	y := e.Y + lx*sin + ly*cos

	p := NewPhysicsEntity(e.Particle.Category)
	p.Stroke = e.ParticleStroke
	p.LifeTime = e.LifeTime

	err := p.Attach(g.World(), BodyDef{
		Kind:            BodyDynamic,
		X:               x,
		Y:               y,
		Angle:           e.Angle,
		VX:              e.Speed * cos,
		VY:              e.Speed * sin,
		AngularVelocity: e.AngularVelocity,
		LinearDamping:   e.LinearDamping,
		Shapes:          []ShapeDef{e.Particle},
	})
	if err != nil {
		log.Printf("⚠️ Emitter %d: %v", e.ID, err)
		return
	}

	g.Add(p)
	e.spawned++
}

func (e *Emitter) Draw(s render.Surface) {
	a := e.SpawnArea
	s.Push()
	s.Translate(e.X, e.Y)
	s.Rotate(e.Angle)
	s.SetColor(e.Stroke)
	s.SetLineWidth(e.LineWidth)
	s.DrawLine(a[0], a[1], a[2], a[3])
	s.Stroke()
	s.Pop()
}
