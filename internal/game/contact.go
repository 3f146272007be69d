package game

import "antimatter/internal/telemetry"

// Outcome is the branch a contact resolved to.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomePlayerHit
	OutcomeAnnihilation
	OutcomeTriggerMatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayerHit:
		return telemetry.OutcomePlayerHit
	case OutcomeAnnihilation:
		return telemetry.OutcomeAnnihilation
	case OutcomeTriggerMatch:
		return telemetry.OutcomeTriggerMatch
	}
	return "none"
}

// ContactResolver turns begin-contact notifications into gameplay effects.
// It runs inside the physics step, so it only queues removals and adds
// effect entities; it never touches bodies.
type ContactResolver struct {
	loop *Loop
}

// NewContactResolver creates a resolver bound to l.
func NewContactResolver(l *Loop) *ContactResolver {
	return &ContactResolver{loop: l}
}

// Resolve applies the first matching branch, in priority order:
// player hit, mutual annihilation, trigger match.
func (r *ContactResolver) Resolve(c Contact) Outcome {
	if c.A == nil || c.B == nil {
		return OutcomeNone
	}
	a, b := c.A.Owner(), c.B.Owner()
	if a == nil || b == nil {
		return OutcomeNone
	}
	sensorA, sensorB := c.A.IsSensor(), c.B.IsSensor()

	outcome := OutcomeNone
	switch {
	case r.playerHit(a, b, sensorA, sensorB):
		outcome = OutcomePlayerHit
	case r.annihilate(a, b, sensorA, sensorB):
		outcome = OutcomeAnnihilation
	case r.matchTrigger(a, b, sensorA, sensorB):
		outcome = OutcomeTriggerMatch
	}

	if outcome != OutcomeNone {
		telemetry.RecordContact(outcome.String())
	}
	return outcome
}

// playerHit handles a player touching a non-sensor of an incompatible material.
func (r *ContactResolver) playerHit(a, b Entity, sensorA, sensorB bool) bool {
	var player, other Entity
	switch {
	case roleOf(a) == RolePlayer && !sensorB:
		player, other = a, b
	case roleOf(b) == RolePlayer && !sensorA:
		player, other = b, a
	default:
		return false
	}

	p, o := player.Base(), other.Base()
	if Compatible(p.Material, o.Material) || !p.InGame() || !o.InGame() {
		return false
	}

	l := r.loop
	p.Emotion.Hit(l.timers, l.sim.HitDuration)

	if l.settings.Explosions {
		if fill, ok := o.Material.ExplosionColor(); ok {
			l.spawnExplosion(o.X, o.Y, fill)
		}
	}

	l.shake.Shake(l.sim.ShakeMagnitude, l.sim.ShakeDuration)
	l.Discard(other)

	l.events.Record(EventTypePlayerHit, l.frame, PlayerHitPayload{
		PlayerID: p.ID,
		OtherID:  o.ID,
		Material: o.Material,
		X:        o.X,
		Y:        o.Y,
	})
	return true
}

// annihilate handles two non-player, non-sensor entities of incompatible materials.
func (r *ContactResolver) annihilate(a, b Entity, sensorA, sensorB bool) bool {
	if roleOf(a) == RolePlayer || roleOf(b) == RolePlayer || sensorA || sensorB {
		return false
	}

	oa, ob := a.Base(), b.Base()
	if Compatible(oa.Material, ob.Material) || !oa.InGame() || !ob.InGame() {
		return false
	}

	l := r.loop
	if l.settings.Explosions {
		if fill, ok := oa.Material.ExplosionColor(); ok {
			l.spawnExplosion(oa.X, oa.Y, fill)
		}
		if fill, ok := ob.Material.ExplosionColor(); ok {
			l.spawnExplosion(ob.X, ob.Y, fill)
		}
	}

	l.Discard(a)
	l.Discard(b)

	l.events.Record(EventTypeAnnihilation, l.frame, AnnihilationPayload{
		AID:       oa.ID,
		BID:       ob.ID,
		AMaterial: oa.Material,
		BMaterial: ob.Material,
	})
	return true
}

// matchTrigger records the first compatible non-sensor, non-player entity
// touching an inactive trigger.
func (r *ContactResolver) matchTrigger(a, b Entity, sensorA, sensorB bool) bool {
	var trigger, other Entity
	switch {
	case roleOf(a) == RoleTrigger && !sensorB && roleOf(b) != RolePlayer:
		trigger, other = a, b
	case roleOf(b) == RoleTrigger && !sensorA && roleOf(a) != RolePlayer:
		trigger, other = b, a
	default:
		return false
	}

	t := trigger.Base()
	if !t.Trigger.Match(other) {
		return false
	}

	l := r.loop
	l.events.Record(EventTypeTriggerMatch, l.frame, TriggerMatchPayload{
		TriggerID: t.ID,
		ObjectID:  other.Base().ID,
	})
	return true
}
