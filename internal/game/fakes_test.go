package game

import (
	"image/color"
	"sort"
	"time"

	"antimatter/internal/config"
	"antimatter/internal/render"
)

// =============================================================================
// SCHEDULER
// =============================================================================

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler fires timers only when advanced.
type manualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves time forward and fires due timers in deadline order.
func (s *manualScheduler) Advance(d time.Duration) int {
	s.now += d
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at != s.timers[j].at {
			return s.timers[i].at < s.timers[j].at
		}
		return s.timers[i].seq < s.timers[j].seq
	})

	fired := 0
	rest := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			t.fn()
			fired++
		default:
			rest = append(rest, t)
		}
	}
	s.timers = rest
	return fired
}

func (s *manualScheduler) Live() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type frameRecorder struct {
	requests int
	next     func()
}

func (f *frameRecorder) RequestFrame(fn func()) {
	f.requests++
	f.next = fn
}

// =============================================================================
// PHYSICS
// =============================================================================

type fakeBody struct {
	owner     Entity
	x, y      float64
	angle     float64
	vx, vy    float64
	fx, fy    float64
	destroyed bool
}

func (b *fakeBody) Position() (float64, float64) { return b.x, b.y }
func (b *fakeBody) Angle() float64               { return b.angle }
func (b *fakeBody) Velocity() (float64, float64) { return b.vx, b.vy }
func (b *fakeBody) SetVelocity(vx, vy float64)   { b.vx, b.vy = vx, vy }
func (b *fakeBody) ApplyForce(fx, fy float64)    { b.fx += fx; b.fy += fy }
func (b *fakeBody) Owner() Entity                { return b.owner }

type fakeFixture struct {
	owner  Entity
	sensor bool
}

func (f fakeFixture) Owner() Entity  { return f.owner }
func (f fakeFixture) IsSensor() bool { return f.sensor }

func contact(a Entity, sensorA bool, b Entity, sensorB bool) Contact {
	return Contact{A: fakeFixture{a, sensorA}, B: fakeFixture{b, sensorB}}
}

// fakeWorld raises queued contacts during Step and logs every call.
type fakeWorld struct {
	listener func(Contact)
	bodies   []*fakeBody
	pending  []Contact
	calls    []string

	// onStep runs inside Step after the contacts.
	onStep func()
}

func (w *fakeWorld) CreateBody(def BodyDef) (Body, error) {
	b := &fakeBody{owner: def.Owner, x: def.X, y: def.Y, angle: def.Angle, vx: def.VX, vy: def.VY}
	w.bodies = append(w.bodies, b)
	return b, nil
}

func (w *fakeWorld) DestroyBody(b Body) {
	fb := b.(*fakeBody)
	fb.destroyed = true
	for i, other := range w.bodies {
		if other == fb {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.calls = append(w.calls, "destroy")
}

func (w *fakeWorld) DestroyAllBodies() int {
	n := len(w.bodies)
	for _, b := range w.bodies {
		b.destroyed = true
	}
	w.bodies = nil
	w.calls = append(w.calls, "destroyAll")
	return n
}

func (w *fakeWorld) BodyCount() int { return len(w.bodies) }

func (w *fakeWorld) Step(dt float64, vel, pos int) {
	w.calls = append(w.calls, "step")
	contacts := w.pending
	w.pending = nil
	for _, c := range contacts {
		w.listener(c)
	}
	if w.onStep != nil {
		w.onStep()
	}
}

func (w *fakeWorld) ClearForces() {
	w.calls = append(w.calls, "clearForces")
}

func (w *fakeWorld) SetContactListener(fn func(Contact)) { w.listener = fn }

func (w *fakeWorld) DebugDraw(s render.Surface) {
	w.calls = append(w.calls, "debugDraw")
}

// =============================================================================
// SURFACE
// =============================================================================

// recordingSurface records the high level drawing calls.
type recordingSurface struct {
	w, h     int
	ops      []string
	depth    int
	presents int
}

func (s *recordingSurface) Width() int                       { return s.w }
func (s *recordingSurface) Height() int                      { return s.h }
func (s *recordingSurface) Push()                            { s.depth++; s.ops = append(s.ops, "push") }
func (s *recordingSurface) Pop()                             { s.depth--; s.ops = append(s.ops, "pop") }
func (s *recordingSurface) Translate(x, y float64)           {}
func (s *recordingSurface) Rotate(angle float64)             {}
func (s *recordingSurface) Scale(x, y float64)               {}
func (s *recordingSurface) SetColor(c color.Color)           {}
func (s *recordingSurface) SetLineWidth(w float64)           {}
func (s *recordingSurface) Clear()                           { s.ops = append(s.ops, "clear") }
func (s *recordingSurface) DrawRectangle(x, y, w, h float64) { s.ops = append(s.ops, "rect") }
func (s *recordingSurface) DrawCircle(x, y, r float64)       {}
func (s *recordingSurface) DrawLine(x1, y1, x2, y2 float64)  {}
func (s *recordingSurface) MoveTo(x, y float64)              {}
func (s *recordingSurface) LineTo(x, y float64)              {}
func (s *recordingSurface) ClosePath()                       {}
func (s *recordingSurface) ClearPath()                       {}
func (s *recordingSurface) Fill()                            { s.ops = append(s.ops, "fill") }
func (s *recordingSurface) FillPreserve()                    {}
func (s *recordingSurface) Stroke()                          {}
func (s *recordingSurface) Present()                         { s.presents++ }

func (s *recordingSurface) mark(name string) { s.ops = append(s.ops, name) }

// =============================================================================
// ENTITIES
// =============================================================================

// actor logs its updates and draws into a shared journal.
type actor struct {
	Object
	name     string
	journal  *[]string
	onUpdate func()
	lastDT   float64
}

func newActor(name string, material Material, journal *[]string) *actor {
	p := &actor{name: name, journal: journal}
	p.Material = material
	return p
}

func (p *actor) Update(dt float64) {
	p.lastDT = dt
	if p.journal != nil {
		*p.journal = append(*p.journal, p.name+".update")
	}
	if p.onUpdate != nil {
		p.onUpdate()
	}
}

func (p *actor) Draw(s render.Surface) {
	if p.journal != nil {
		*p.journal = append(*p.journal, p.name+".draw")
	}
	if rs, ok := s.(*recordingSurface); ok {
		rs.mark(p.name)
	}
}

// =============================================================================
// LOOP
// =============================================================================

type testRig struct {
	loop   *Loop
	world  *fakeWorld
	timers *manualScheduler
	frames *frameRecorder
	now    time.Time
}

// newRig builds a loop on fakes with a controllable clock.
func newRig(settings config.SettingsConfig) *testRig {
	r := &testRig{
		world:  &fakeWorld{},
		timers: &manualScheduler{},
		frames: &frameRecorder{},
		now:    time.Unix(1000, 0),
	}
	r.loop = NewLoop(LoopConfig{
		Video:      config.DefaultVideo(),
		Simulation: config.DefaultSimulation(),
		Settings:   settings,
		World:      r.world,
		Frames:     r.frames,
		Timers:     r.timers,
		Now:        func() time.Time { return r.now },
		Seed:       1,
	})
	return r
}

// advance moves the loop clock.
func (r *testRig) advance(d time.Duration) {
	r.now = r.now.Add(d)
}

// attachBody gives e a fake body at its position.
func (r *testRig) attachBody(e Entity) *fakeBody {
	o := e.Base()
	b, _ := r.world.CreateBody(BodyDef{Owner: e, X: o.X, Y: o.Y})
	o.Bodies = append(o.Bodies, b)
	return b.(*fakeBody)
}
