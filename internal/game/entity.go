package game

import "antimatter/internal/render"

// Entity is anything the loop updates and draws.
type Entity interface {
	Base() *Object
	Update(dt float64)
	Draw(s render.Surface)
}

// Role is the capability an entity plays in contact resolution.
type Role uint8

const (
	RoleGeneric Role = iota
	RolePlayer
	RoleTrigger
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleTrigger:
		return "trigger"
	}
	return "generic"
}

// Object is the state shared by every entity. Concrete entities embed it.
type Object struct {
	ID       uint64
	X, Y     float64
	Angle    float64
	Material Material
	Bodies   []Body

	// Emotion is set on players, Trigger on triggers.
	Emotion *Emotion
	Trigger *TriggerState

	game *Loop
}

// Base returns o, so any struct embedding Object satisfies part of Entity.
func (o *Object) Base() *Object {
	return o
}

// Game returns the loop o belongs to, or nil when detached.
func (o *Object) Game() *Loop {
	return o.game
}

// InGame reports whether o is attached to a loop.
func (o *Object) InGame() bool {
	return o.game != nil
}

// Role derives the role from the capabilities present.
func (o *Object) Role() Role {
	switch {
	case o.Emotion != nil:
		return RolePlayer
	case o.Trigger != nil:
		return RoleTrigger
	}
	return RoleGeneric
}

// Body returns the first body, or nil.
func (o *Object) Body() Body {
	if len(o.Bodies) == 0 {
		return nil
	}
	return o.Bodies[0]
}

// SyncFromBody copies the first body's transform into o.
func (o *Object) SyncFromBody() {
	b := o.Body()
	if b == nil {
		return
	}
	o.X, o.Y = b.Position()
	o.Angle = b.Angle()
}

// roleOf returns the role of e, or RoleGeneric for nil.
func roleOf(e Entity) Role {
	if e == nil {
		return RoleGeneric
	}
	return e.Base().Role()
}
