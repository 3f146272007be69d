package physics

import (
	"github.com/bytearena/box2d"

	"antimatter/internal/game"
)

// body wraps a box2d body. b2 is nil once destroyed.
type body struct {
	b2    *box2d.B2Body
	owner game.Entity
}

func (b *body) Position() (float64, float64) {
	if b.b2 == nil {
		return 0, 0
	}
	p := b.b2.GetPosition()
	return p.X, p.Y
}

func (b *body) Angle() float64 {
	if b.b2 == nil {
		return 0
	}
	return b.b2.GetAngle()
}

func (b *body) Velocity() (float64, float64) {
	if b.b2 == nil {
		return 0, 0
	}
	v := b.b2.GetLinearVelocity()
	return v.X, v.Y
}

func (b *body) SetVelocity(vx, vy float64) {
	if b.b2 == nil {
		return
	}
	b.b2.SetLinearVelocity(box2d.MakeB2Vec2(vx, vy))
}

func (b *body) ApplyForce(fx, fy float64) {
	if b.b2 == nil {
		return
	}
	b.b2.ApplyForceToCenter(box2d.MakeB2Vec2(fx, fy), true)
}

func (b *body) Owner() game.Entity {
	return b.owner
}

// fixture exposes a box2d fixture to the contact resolver.
type fixture struct {
	f *box2d.B2Fixture
}

func (f fixture) Owner() game.Entity {
	if f.f == nil {
		return nil
	}
	return ownerOf(f.f.GetBody())
}

func (f fixture) IsSensor() bool {
	return f.f != nil && f.f.IsSensor()
}

func ownerOf(b *box2d.B2Body) game.Entity {
	if b == nil {
		return nil
	}
	if wb, ok := b.GetUserData().(*body); ok {
		return wb.owner
	}
	return nil
}

// contactListener forwards begin-contact notifications to the world's listener.
type contactListener struct {
	world *World
}

func (l *contactListener) BeginContact(contact box2d.B2ContactInterface) {
	fn := l.world.listener
	if fn == nil {
		return
	}
	fn(game.Contact{
		A: fixture{contact.GetFixtureA()},
		B: fixture{contact.GetFixtureB()},
	})
}

func (l *contactListener) EndContact(contact box2d.B2ContactInterface) {}

func (l *contactListener) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
}

func (l *contactListener) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
}
