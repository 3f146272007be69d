package physics

import (
	"testing"
	"time"

	"antimatter/internal/config"
	"antimatter/internal/game"
	"antimatter/internal/host"
)

func newLoop(w *World, timers game.Scheduler) *game.Loop {
	return game.NewLoop(game.LoopConfig{
		Video:      config.DefaultVideo(),
		Simulation: config.DefaultSimulation(),
		Settings:   config.High(),
		World:      w,
		Timers:     timers,
		Seed:       1,
	})
}

func particle(t *testing.T, w *World, m game.Material, x, y float64) *game.PhysicsEntity {
	t.Helper()
	p := game.NewPhysicsEntity(m)
	err := p.Attach(w, game.BodyDef{
		Kind:   game.BodyDynamic,
		X:      x,
		Y:      y,
		Shapes: []game.ShapeDef{{Kind: game.ShapeCircle, Radius: 0.5, Density: 4, Category: m}},
	})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	return p
}

// TestAnnihilationOnBox2D runs a full frame on a real world: both particles
// are removed after the step and their bodies destroyed.
func TestAnnihilationOnBox2D(t *testing.T) {
	w := NewWorld()
	loop := newLoop(w, host.NewManualScheduler())

	a := particle(t, w, game.Matter, 0, 0)
	b := particle(t, w, game.Antimatter, 0.5, 0)
	loop.Add(a)
	loop.Add(b)

	loop.Play()
	loop.Tick()

	if loop.Registry().Contains(a) || loop.Registry().Contains(b) {
		t.Error("Expected both particles removed")
	}
	if w.BodyCount() != 0 {
		t.Errorf("Expected no bodies left, got %d", w.BodyCount())
	}
}

func TestPlayerHitOnBox2D(t *testing.T) {
	w := NewWorld()
	timers := host.NewManualScheduler()
	loop := newLoop(w, timers)

	p := game.NewPlayer(0, 0)
	body, err := w.CreateBody(p.BodyDef())
	if err != nil {
		t.Fatalf("CreateBody failed: %v", err)
	}
	p.Bodies = append(p.Bodies, body)
	loop.SetPlayer(p)

	other := particle(t, w, game.Antimatter, 1, 0)
	loop.Add(other)

	loop.Play()
	loop.Tick()

	if p.Emotion.State() != game.EmotionHit {
		t.Fatal("Expected player HIT")
	}
	if loop.Registry().Contains(other) {
		t.Error("Expected the antimatter particle removed")
	}
	if w.BodyCount() != 1 {
		t.Errorf("Expected only the player's body left, got %d", w.BodyCount())
	}

	timers.Advance(700 * time.Millisecond)
	if p.Emotion.State() != game.EmotionNormal {
		t.Error("Expected NORMAL after 700ms")
	}
}

func TestTriggerOnBox2D(t *testing.T) {
	w := NewWorld()
	loop := newLoop(w, host.NewManualScheduler())

	trigger := game.NewTrigger(0, 0, 4, 4, game.Matter)
	tb, err := w.CreateBody(game.BodyDef{
		Owner: trigger,
		Kind:  game.BodyStatic,
		Shapes: []game.ShapeDef{{
			Kind:     game.ShapePolygon,
			Vertices: []float64{-2, -2, 2, -2, 2, 2, -2, 2},
			Category: game.Matter,
			Sensor:   true,
		}},
	})
	if err != nil {
		t.Fatalf("CreateBody failed: %v", err)
	}
	trigger.Bodies = append(trigger.Bodies, tb)
	loop.Add(trigger)

	box := particle(t, w, game.Matter, 0, 0)
	loop.Add(box)

	loop.Play()
	loop.Tick()

	if trigger.State().Object != game.Entity(box) {
		t.Error("Expected the matter particle matched")
	}
	if !loop.Registry().Contains(box) {
		t.Error("Expected a trigger match to keep the entity")
	}
}
