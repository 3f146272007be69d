package level

import (
	"context"
	"log"

	"antimatter/internal/game"
)

// Loader builds descriptors on the frame goroutine and loads them into a loop.
type Loader struct {
	loop  *game.Loop
	world game.PhysicsWorld
}

// NewLoader creates a loader for loop, building bodies in world.
func NewLoader(loop *game.Loop, world game.PhysicsWorld) *Loader {
	return &Loader{loop: loop, world: world}
}

// Load posts the build to the loop and waits for it. With replace set the
// loop is cleared first; otherwise the entities are appended. A descriptor
// that fails validation never reaches the loop, and a build whose caller
// has already returned is dropped. The frame goroutine must be draining
// the mailbox, running or paused.
func (l *Loader) Load(ctx context.Context, desc *Descriptor, replace bool) error {
	if err := validate(desc); err != nil {
		log.Printf("⚠️ Level %q rejected: %v", desc.Name, err)
		return err
	}

	done := make(chan error, 1)
	l.loop.Post(func() {
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		if replace {
			l.loop.Clear()
		}
		lvl, err := Build(desc, l.world)
		if err != nil {
			done <- err
			return
		}
		l.loop.Load(lvl)
		done <- nil
	})

	select {
	case err := <-done:
		if err != nil {
			log.Printf("⚠️ Level %q failed to load: %v", desc.Name, err)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadData parses data and loads it like Load.
func (l *Loader) LoadData(ctx context.Context, data []byte, replace bool) error {
	desc, err := Parse(data)
	if err != nil {
		return err
	}
	return l.Load(ctx, desc, replace)
}
