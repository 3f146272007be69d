package game

import (
	"image/color"
	"math"
	"testing"
	"time"

	"antimatter/internal/config"
)

func indexOf(ops []string, name string) int {
	for i, op := range ops {
		if op == name {
			return i
		}
	}
	return -1
}

func countOf(ops []string, name string) int {
	n := 0
	for _, op := range ops {
		if op == name {
			n++
		}
	}
	return n
}

// TestRemovalDeferredUntilAfterStep verifies annihilated entities survive the
// step that raised the contact and are removed by the flush that follows.
func TestRemovalDeferredUntilAfterStep(t *testing.T) {
	r := newRig(config.High())
	a := newActor("a", Matter, nil)
	b := newActor("b", Antimatter, nil)
	r.loop.Add(a)
	r.loop.Add(b)
	bodyA, bodyB := r.attachBody(a), r.attachBody(b)

	r.world.pending = []Contact{contact(a, false, b, false)}

	duringStep := false
	r.world.onStep = func() {
		reg := r.loop.Registry()
		duringStep = reg.Contains(a) && reg.Contains(b) && !bodyA.destroyed && !bodyB.destroyed
	}

	r.loop.Play()
	r.advance(16 * time.Millisecond)
	r.loop.Tick()

	if !duringStep {
		t.Error("Expected both entities and bodies to exist during the step")
	}
	if r.loop.Registry().Contains(a) || r.loop.Registry().Contains(b) {
		t.Error("Expected both entities removed after the frame")
	}
	if !bodyA.destroyed || !bodyB.destroyed {
		t.Error("Expected both bodies destroyed")
	}
	if a.InGame() || b.InGame() {
		t.Error("Expected back-references cleared")
	}
	if explosions(r.loop) != 2 {
		t.Errorf("Expected 2 explosions, got %d", explosions(r.loop))
	}
}

// TestUpdateOrder verifies entities, player and physics run in a fixed order
// and that forces are cleared before removals are flushed.
func TestUpdateOrder(t *testing.T) {
	var journal []string
	r := newRig(config.High())
	a := newActor("a", Matter, &journal)
	b := newActor("b", Matter, &journal)
	player := newActor("player", Matter, &journal)
	r.loop.Add(a)
	r.loop.Add(b)
	r.loop.SetPlayer(player)
	r.attachBody(a)

	a.onUpdate = func() { r.loop.Discard(a) }
	r.world.onStep = func() { journal = append(journal, "step") }

	r.loop.Play()
	r.advance(16 * time.Millisecond)
	r.loop.Tick()

	want := []string{"a.update", "b.update", "player.update", "step"}
	if len(journal) != len(want) {
		t.Fatalf("Expected %v, got %v", want, journal)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, journal[i])
		}
	}

	calls := []string{"step", "clearForces", "destroy"}
	if len(r.world.calls) != len(calls) {
		t.Fatalf("Expected world calls %v, got %v", calls, r.world.calls)
	}
	for i := range calls {
		if r.world.calls[i] != calls[i] {
			t.Errorf("Expected %s at %d, got %s", calls[i], i, r.world.calls[i])
		}
	}
	if r.loop.Registry().Contains(a) {
		t.Error("Expected discarded entity removed")
	}
}

func TestEntitiesAddedDuringUpdateWaitAFrame(t *testing.T) {
	var journal []string
	r := newRig(config.High())
	a := newActor("a", Matter, &journal)
	late := newActor("late", Matter, &journal)
	r.loop.Add(a)
	a.onUpdate = func() { r.loop.Add(late) }

	r.loop.Play()
	r.loop.Tick()

	if indexOf(journal, "late.update") != -1 {
		t.Error("Expected entity added mid-pass to skip this frame")
	}
	if !r.loop.Registry().Contains(late) {
		t.Error("Expected entity to be registered")
	}
}

func TestPausedTickDoesNothing(t *testing.T) {
	var journal []string
	r := newRig(config.High())
	r.loop.Add(newActor("a", Matter, &journal))

	r.loop.Tick()

	if len(journal) != 0 {
		t.Errorf("Expected no updates while paused, got %v", journal)
	}
	if r.loop.Frame() != 0 || r.frames.requests != 0 {
		t.Error("Expected no frame and no request while paused")
	}
	if r.loop.GetSnapshot() != nil {
		t.Error("Expected no snapshot before the first frame")
	}
}

func TestPlayRequestsOneFrame(t *testing.T) {
	r := newRig(config.High())

	r.loop.Play()
	r.loop.Play()
	if r.frames.requests != 1 {
		t.Fatalf("Expected 1 frame request, got %d", r.frames.requests)
	}

	r.frames.next()
	if r.frames.requests != 2 {
		t.Errorf("Expected each frame to request the next, got %d", r.frames.requests)
	}

	r.loop.Pause()
	r.frames.next()
	if r.frames.requests != 2 {
		t.Errorf("Expected paused frame not to request another, got %d", r.frames.requests)
	}
	if r.loop.Frame() != 1 {
		t.Errorf("Expected 1 frame, got %d", r.loop.Frame())
	}
}

func TestToggleAndBlur(t *testing.T) {
	r := newRig(config.High())

	if !r.loop.Toggle() || !r.loop.Running() {
		t.Error("Expected toggle to start the loop")
	}
	if r.loop.Toggle() || r.loop.Running() {
		t.Error("Expected toggle to pause the loop")
	}

	r.loop.Play()
	r.loop.Blur()
	if r.loop.Running() {
		t.Error("Expected blur to pause")
	}
}

func TestMailboxDrainedFirst(t *testing.T) {
	var journal []string
	r := newRig(config.High())
	r.loop.Add(newActor("a", Matter, &journal))
	r.loop.Post(func() { journal = append(journal, "post") })

	r.loop.Play()
	r.loop.Tick()

	if len(journal) == 0 || journal[0] != "post" {
		t.Errorf("Expected posted closure first, got %v", journal)
	}
}

func TestDeltaClamped(t *testing.T) {
	r := newRig(config.High())
	a := newActor("a", Matter, nil)
	r.loop.Add(a)
	r.loop.Play()

	r.advance(500 * time.Millisecond)
	r.loop.Tick()

	want := config.DefaultSimulation().MaxFrameTime / 1000
	if math.Abs(a.lastDT-want) > 1e-9 {
		t.Errorf("Expected clamped delta %v, got %v", want, a.lastDT)
	}

	r.advance(10 * time.Millisecond)
	r.loop.Tick()
	if math.Abs(a.lastDT-0.010) > 1e-9 {
		t.Errorf("Expected delta 0.010, got %v", a.lastDT)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	r := newRig(config.High())
	a := newActor("a", Matter, nil)
	r.loop.Add(a)
	body := r.attachBody(a)

	if !r.loop.Remove(a) {
		t.Fatal("Expected first remove to succeed")
	}
	if r.loop.Remove(a) {
		t.Error("Expected second remove to be a no-op")
	}
	if !body.destroyed || countOf(r.world.calls, "destroy") != 1 {
		t.Errorf("Expected body destroyed once, got calls %v", r.world.calls)
	}
	if a.InGame() || len(a.Bodies) != 0 {
		t.Error("Expected entity detached")
	}
}

func TestRemoveDuringStepDefers(t *testing.T) {
	r := newRig(config.High())
	a := newActor("a", Matter, nil)
	r.loop.Add(a)
	body := r.attachBody(a)

	removedInStep := true
	r.world.onStep = func() {
		removedInStep = r.loop.Remove(a) || body.destroyed
	}

	r.loop.Play()
	r.loop.Tick()

	if removedInStep {
		t.Error("Expected remove inside the step to be deferred")
	}
	if r.loop.Registry().Contains(a) || !body.destroyed {
		t.Error("Expected entity removed after the step")
	}
}

func TestAddIdempotent(t *testing.T) {
	r := newRig(config.High())
	a := newActor("a", Matter, nil)

	r.loop.Add(a)
	id := a.ID
	r.loop.Add(a)

	if r.loop.Registry().Len() != 1 {
		t.Errorf("Expected 1 entity, got %d", r.loop.Registry().Len())
	}
	if id == 0 || a.ID != id {
		t.Error("Expected a stable non-zero ID")
	}
	if a.Game() != r.loop {
		t.Error("Expected back-reference to the loop")
	}
}

func TestClear(t *testing.T) {
	r := newRig(config.High())
	a := newActor("a", Matter, nil)
	b := newActor("b", Antimatter, nil)
	r.loop.Add(a)
	r.loop.Add(b)
	r.attachBody(a)
	r.attachBody(b)

	p := NewPlayer(0, 0)
	r.loop.SetPlayer(p)
	r.attachBody(p)
	p.Emotion.Hit(r.timers, time.Second)

	r.loop.Clear()

	if r.loop.Registry().Len() != 0 || r.loop.Player() != nil {
		t.Error("Expected empty registry and no player")
	}
	if a.InGame() || b.InGame() || p.InGame() {
		t.Error("Expected every entity detached")
	}
	if p.Emotion.State() != EmotionNormal || r.timers.Live() != 0 {
		t.Error("Expected emotion reset and timer cancelled")
	}
	if r.world.BodyCount() != 0 {
		t.Errorf("Expected no bodies, got %d", r.world.BodyCount())
	}
	if countOf(r.world.calls, "destroy") != 0 || countOf(r.world.calls, "destroyAll") != 1 {
		t.Errorf("Expected a single bulk destroy, got %v", r.world.calls)
	}
}

func TestLoadAppends(t *testing.T) {
	r := newRig(config.High())

	first := NewLevel("first")
	first.Fill = color.NRGBA{32, 32, 48, 255}
	first.Entities = []Entity{newActor("a", Matter, nil), newActor("b", Antimatter, nil)}
	p := NewPlayer(20, 20)
	first.Player = p

	r.loop.Load(first)

	if r.loop.Registry().Len() != 2 {
		t.Errorf("Expected 2 entities, got %d", r.loop.Registry().Len())
	}
	if r.loop.Player() != Entity(p) || r.loop.Camera().Target != Entity(p) {
		t.Error("Expected player set and followed by the camera")
	}
	if r.loop.Level() != first {
		t.Error("Expected level adopted")
	}

	second := NewLevel("second")
	second.Entities = []Entity{newActor("c", Matter, nil)}
	r.loop.Load(second)

	if r.loop.Registry().Len() != 3 {
		t.Errorf("Expected loading to append, got %d entities", r.loop.Registry().Len())
	}
	if r.loop.Player() != Entity(p) {
		t.Error("Expected player kept when the new level has none")
	}

	r.loop.Load(nil)
	if r.loop.Level() != second {
		t.Error("Expected nil level to be ignored")
	}
}

func TestSetPlayerReplaces(t *testing.T) {
	r := newRig(config.High())
	first := NewPlayer(0, 0)
	second := NewPlayer(5, 5)
	r.loop.SetPlayer(first)
	body := r.attachBody(first)

	r.loop.SetPlayer(second)

	if first.InGame() || !body.destroyed {
		t.Error("Expected the old player detached with its body")
	}
	if !second.InGame() {
		t.Error("Expected the new player attached")
	}

	r.loop.SetPlayer(nil)
	r.loop.Play()
	r.loop.Tick()
	if r.loop.Frame() != 1 {
		t.Error("Expected a frame without a player")
	}
}

func TestDrawOrder(t *testing.T) {
	r := newRig(config.Low())
	s := &recordingSurface{w: 640, h: 480}
	r.loop.surface = s
	r.loop.Add(newActor("a", Matter, nil))
	r.loop.Add(newActor("b", Matter, nil))
	r.loop.SetPlayer(newActor("player", Matter, nil))

	r.loop.Play()
	r.loop.Tick()

	if len(s.ops) == 0 || s.ops[0] != "clear" {
		t.Fatalf("Expected transparent clear without a level, got %v", s.ops)
	}
	push, a, b, player, pop := indexOf(s.ops, "push"), indexOf(s.ops, "a"), indexOf(s.ops, "b"), indexOf(s.ops, "player"), indexOf(s.ops, "pop")
	if !(push < a && a < b && b < player && player < pop) {
		t.Errorf("Expected push, a, b, player, pop in order, got %v", s.ops)
	}
	if s.depth != 0 {
		t.Errorf("Expected balanced push/pop, got depth %d", s.depth)
	}
	if s.presents != 1 {
		t.Errorf("Expected 1 present, got %d", s.presents)
	}
}

func TestDrawLevelFill(t *testing.T) {
	r := newRig(config.Low())
	s := &recordingSurface{w: 640, h: 480}
	r.loop.surface = s

	level := NewLevel("filled")
	level.Fill = color.NRGBA{32, 32, 48, 255}
	r.loop.Load(level)

	r.loop.Play()
	r.loop.Tick()

	if len(s.ops) < 2 || s.ops[0] != "rect" || s.ops[1] != "fill" {
		t.Errorf("Expected level fill first, got %v", s.ops)
	}
}

func TestDebugOverlay(t *testing.T) {
	settings := config.High()
	settings.Debug = true
	r := newRig(settings)
	debug := &recordingSurface{w: 640, h: 480}
	r.loop.debug = debug

	r.loop.Play()
	r.loop.Tick()

	if indexOf(r.world.calls, "debugDraw") == -1 || debug.presents != 1 {
		t.Error("Expected debug overlay drawn and presented")
	}

	r.loop.SetDebug(false)
	if r.loop.Settings().Debug {
		t.Error("Expected requested settings visible immediately")
	}
	r.world.calls = nil
	r.loop.Tick()
	if indexOf(r.world.calls, "debugDraw") != -1 {
		t.Error("Expected no debug overlay once disabled")
	}
}

func TestSettingsApplyNextFrame(t *testing.T) {
	r := newRig(config.High())
	p := NewPlayer(0, 0)
	r.loop.SetPlayer(p)

	r.loop.ApplySettings(config.Low())
	r.loop.Play()
	r.loop.Tick()

	other := newActor("other", Antimatter, nil)
	r.loop.Add(other)
	r.world.pending = []Contact{contact(p, false, other, false)}
	r.loop.Tick()

	if explosions(r.loop) != 0 {
		t.Error("Expected explosions disabled after the settings change")
	}
	if r.loop.Registry().Contains(other) {
		t.Error("Expected hit entity removed")
	}
}

func TestHitResetsThroughTimers(t *testing.T) {
	r := newRig(config.High())
	p := NewPlayer(0, 0)
	r.loop.SetPlayer(p)
	other := newActor("other", Antimatter, nil)
	r.loop.Add(other)
	r.world.pending = []Contact{contact(p, false, other, false)}

	r.loop.Play()
	r.loop.Tick()

	if p.Emotion.State() != EmotionHit {
		t.Fatal("Expected HIT after the contact")
	}
	r.timers.Advance(699 * time.Millisecond)
	if p.Emotion.State() != EmotionHit {
		t.Error("Expected HIT before 700ms")
	}
	r.timers.Advance(time.Millisecond)
	if p.Emotion.State() != EmotionNormal {
		t.Error("Expected NORMAL at 700ms")
	}
}

func TestSnapshotPublished(t *testing.T) {
	r := newRig(config.High())
	r.loop.Add(newActor("a", Matter, nil))
	r.loop.Add(NewTrigger(0, 0, 2, 2, Matter))
	r.loop.SetPlayer(NewPlayer(3, 4))

	r.loop.Play()
	r.advance(16 * time.Millisecond)
	r.loop.Tick()

	snap := r.loop.GetSnapshot()
	if snap == nil {
		t.Fatal("Expected a snapshot after the first frame")
	}
	if snap.Frame != 1 || snap.EntityCount != 2 || !snap.Running {
		t.Errorf("Unexpected snapshot header: %+v", snap)
	}
	if len(snap.Triggers) != 1 {
		t.Errorf("Expected 1 trigger, got %d", len(snap.Triggers))
	}
	if snap.Player == nil || snap.Player.Emotion != "normal" {
		t.Errorf("Expected player snapshot, got %+v", snap.Player)
	}
}

func TestLoopEvents(t *testing.T) {
	r := newRig(config.High())
	events := NewEventLog()
	if err := events.Start(""); err != nil {
		t.Fatalf("Failed to start event log: %v", err)
	}
	defer events.Stop()
	r.loop.events = events

	a := newActor("a", Matter, nil)
	b := newActor("b", Antimatter, nil)
	r.loop.Add(a)
	r.loop.Add(b)
	r.world.pending = []Contact{contact(a, false, b, false)}

	r.loop.Play()
	r.loop.Tick()

	if events.Count(EventTypeAnnihilation) != 1 {
		t.Errorf("Expected 1 annihilation event, got %d", events.Count(EventTypeAnnihilation))
	}
	if events.Count(EventTypeEntityRemoved) != 2 {
		t.Errorf("Expected 2 removal events, got %d", events.Count(EventTypeEntityRemoved))
	}
	if events.Count(EventTypeFrame) != 1 {
		t.Errorf("Expected 1 frame event, got %d", events.Count(EventTypeFrame))
	}
}
