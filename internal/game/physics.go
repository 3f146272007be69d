package game

import "antimatter/internal/render"

// BodyKind is how a body participates in the simulation.
type BodyKind uint8

const (
	BodyStatic BodyKind = iota
	BodyKinematic
	BodyDynamic
)

// ParseBodyKind parses "static", "kinematic" or "dynamic".
func ParseBodyKind(s string) (BodyKind, bool) {
	switch s {
	case "", "static":
		return BodyStatic, true
	case "kinematic":
		return BodyKinematic, true
	case "dynamic":
		return BodyDynamic, true
	}
	return BodyStatic, false
}

// ShapeKind selects the collision shape of a fixture.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapePolygon
	ShapeEdge
)

// MaxPolygonVertices is the largest polygon a world must accept.
const MaxPolygonVertices = 8

// ShapeDef describes one fixture. Vertices are flat x,y pairs in body space.
type ShapeDef struct {
	Kind     ShapeKind
	Radius   float64
	OffsetX  float64
	OffsetY  float64
	Vertices []float64

	Density     float64
	Friction    float64
	Restitution float64
	Category    Material
	Sensor      bool
}

// BodyDef describes a body and its fixtures.
type BodyDef struct {
	Owner           Entity
	Kind            BodyKind
	X, Y            float64
	Angle           float64
	VX, VY          float64
	AngularVelocity float64
	LinearDamping   float64
	Shapes          []ShapeDef
}

// Body is a rigid body owned by the physics world.
type Body interface {
	Position() (x, y float64)
	Angle() float64
	Velocity() (vx, vy float64)
	SetVelocity(vx, vy float64)
	ApplyForce(fx, fy float64)
	Owner() Entity
}

// Fixture is one shape of a body as seen by a contact.
type Fixture interface {
	Owner() Entity
	IsSensor() bool
}

// Contact is a begin-contact notification between two fixtures.
type Contact struct {
	A, B Fixture
}

// PhysicsWorld is the rigid-body simulation the loop steps. Step invokes the
// contact listener synchronously; bodies must not be created or destroyed
// from inside the listener.
type PhysicsWorld interface {
	CreateBody(def BodyDef) (Body, error)
	DestroyBody(b Body)
	DestroyAllBodies() int
	BodyCount() int

	Step(dt float64, velocityIterations, positionIterations int)
	ClearForces()
	SetContactListener(fn func(Contact))

	DebugDraw(s render.Surface)
}
