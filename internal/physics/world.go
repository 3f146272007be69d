// Package physics adapts a box2d world to the simulation's PhysicsWorld.
package physics

import (
	"errors"
	"fmt"
	"log"

	"github.com/bytearena/box2d"

	"antimatter/internal/game"
)

var (
	// ErrWorldLocked is returned when bodies are created during a step.
	ErrWorldLocked = errors.New("physics: world is locked")
	// ErrInvalidShape is returned for shapes box2d cannot build.
	ErrInvalidShape = errors.New("physics: invalid shape")
)

// MaxPolygonVertices is the largest polygon box2d accepts.
const MaxPolygonVertices = game.MaxPolygonVertices

// World is a zero-gravity box2d world. Bodies carry their wrapper as user
// data so contacts can be traced back to the owning entity.
type World struct {
	b2       *box2d.B2World
	listener func(game.Contact)
}

// NewWorld creates an empty world without gravity.
func NewWorld() *World {
	bw := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	w := &World{b2: &bw}
	w.b2.SetContactListener(&contactListener{world: w})
	return w
}

// CreateBody builds def and its fixtures.
func (w *World) CreateBody(def game.BodyDef) (game.Body, error) {
	if w.b2.IsLocked() {
		return nil, ErrWorldLocked
	}

	shapes := make([]box2d.B2ShapeInterface, len(def.Shapes))
	for i, s := range def.Shapes {
		shape, err := makeShape(s)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		shapes[i] = shape
	}

	bd := box2d.MakeB2BodyDef()
	bd.Type = bodyType(def.Kind)
	bd.Position = box2d.MakeB2Vec2(def.X, def.Y)
	bd.Angle = def.Angle
	bd.LinearVelocity = box2d.MakeB2Vec2(def.VX, def.VY)
	bd.AngularVelocity = def.AngularVelocity
	bd.LinearDamping = def.LinearDamping

	b2 := w.b2.CreateBody(&bd)
	b := &body{b2: b2, owner: def.Owner}
	b2.SetUserData(b)

	for i, s := range def.Shapes {
		fd := box2d.MakeB2FixtureDef()
		fd.Shape = shapes[i]
		fd.Density = s.Density
		fd.Friction = s.Friction
		fd.Restitution = s.Restitution
		fd.IsSensor = s.Sensor
		// Category zero keeps box2d's default so the fixture still collides.
		if s.Category != 0 {
			fd.Filter.CategoryBits = uint16(s.Category)
		}
		b2.CreateFixtureFromDef(&fd)
	}

	return b, nil
}

// DestroyBody removes b from the world. Destroying a body twice, or a body
// from another world, is a no-op.
func (w *World) DestroyBody(b game.Body) {
	wb, ok := b.(*body)
	if !ok || wb.b2 == nil {
		return
	}
	if w.b2.IsLocked() {
		log.Printf("⚠️ Body destroy skipped: %v", ErrWorldLocked)
		return
	}
	w.b2.DestroyBody(wb.b2)
	wb.b2 = nil
}

// DestroyAllBodies removes every body and returns how many there were.
func (w *World) DestroyAllBodies() int {
	if w.b2.IsLocked() {
		log.Printf("⚠️ Clear skipped: %v", ErrWorldLocked)
		return 0
	}
	n := 0
	for b := w.b2.GetBodyList(); b != nil; {
		next := b.GetNext()
		if wb, ok := b.GetUserData().(*body); ok {
			wb.b2 = nil
		}
		w.b2.DestroyBody(b)
		n++
		b = next
	}
	return n
}

// BodyCount returns the number of bodies in the world.
func (w *World) BodyCount() int {
	return w.b2.GetBodyCount()
}

// Step advances the simulation. Contacts are reported synchronously.
func (w *World) Step(dt float64, velocityIterations, positionIterations int) {
	w.b2.Step(dt, velocityIterations, positionIterations)
}

// ClearForces resets the accumulated forces on every body.
func (w *World) ClearForces() {
	w.b2.ClearForces()
}

// SetContactListener sets the begin-contact callback.
func (w *World) SetContactListener(fn func(game.Contact)) {
	w.listener = fn
}

func bodyType(k game.BodyKind) uint8 {
	switch k {
	case game.BodyDynamic:
		return box2d.B2BodyType.B2_dynamicBody
	case game.BodyKinematic:
		return box2d.B2BodyType.B2_kinematicBody
	}
	return box2d.B2BodyType.B2_staticBody
}

func makeShape(s game.ShapeDef) (box2d.B2ShapeInterface, error) {
	switch s.Kind {
	case game.ShapeCircle:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: circle radius %v", ErrInvalidShape, s.Radius)
		}
		c := box2d.MakeB2CircleShape()
		c.M_radius = s.Radius
		c.M_p = box2d.MakeB2Vec2(s.OffsetX, s.OffsetY)
		return &c, nil

	case game.ShapePolygon:
		n := len(s.Vertices) / 2
		if len(s.Vertices)%2 != 0 || n < 3 || n > MaxPolygonVertices {
			return nil, fmt.Errorf("%w: polygon with %d coordinates", ErrInvalidShape, len(s.Vertices))
		}
		verts := make([]box2d.B2Vec2, n)
		for i := range verts {
			verts[i] = box2d.MakeB2Vec2(s.Vertices[2*i]+s.OffsetX, s.Vertices[2*i+1]+s.OffsetY)
		}
		p := box2d.MakeB2PolygonShape()
		p.Set(verts, n)
		return &p, nil

	case game.ShapeEdge:
		if len(s.Vertices) != 4 {
			return nil, fmt.Errorf("%w: edge with %d coordinates", ErrInvalidShape, len(s.Vertices))
		}
		v := s.Vertices
		e := box2d.MakeB2EdgeShape()
		e.Set(box2d.MakeB2Vec2(v[0]+s.OffsetX, v[1]+s.OffsetY), box2d.MakeB2Vec2(v[2]+s.OffsetX, v[3]+s.OffsetY))
		return &e, nil
	}
	return nil, fmt.Errorf("%w: kind %d", ErrInvalidShape, s.Kind)
}
