package game

import (
	"image/color"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"antimatter/internal/config"
	"antimatter/internal/input"
	"antimatter/internal/render"
	"antimatter/internal/telemetry"
)

// LoopConfig wires a Loop to its collaborators.
type LoopConfig struct {
	Video      config.VideoConfig
	Simulation config.SimulationConfig
	Settings   config.SettingsConfig

	World        PhysicsWorld   // May be nil; emitters then spawn nothing
	Surface      render.Surface // May be nil for a headless loop
	DebugSurface render.Surface // Physics debug overlay, may be nil
	Input        *input.Input   // Created from Video when nil

	Frames FrameScheduler
	Timers Scheduler // May be nil; a hit player then stays HIT

	// Now is the clock source. Defaults to time.Now.
	Now func() time.Time
	// Seed for the loop's random source. Zero uses the current time.
	Seed int64

	Events *EventLog // Optional; a stopped log drops everything
}

// Loop is the fixed-step frame loop. All entity, registry and world access
// happens on the goroutine that runs Tick; other goroutines talk to it through
// Post, Play, Pause and the snapshot.
type Loop struct {
	video config.VideoConfig
	sim   config.SimulationConfig

	settings config.SettingsConfig // Frame goroutine only
	shared   atomic.Value          // config.SettingsConfig, for readers

	world    PhysicsWorld
	resolver *ContactResolver
	surface  render.Surface
	debug    render.Surface
	input    *input.Input

	frames  FrameScheduler
	timers  Scheduler
	mailbox Mailbox
	clock   *Clock
	rng     *rand.Rand

	registry *Registry
	removed  RemovalQueue
	player   Entity
	level    *Level

	camera     *Camera
	shake      Shake
	background *Background

	running  atomic.Bool
	nextID   uint64
	frame    uint64
	stepping bool

	events    *EventLog
	snapshots *SnapshotPool
}

// NewLoop creates a paused loop. Call Play to start requesting frames.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Input == nil {
		cfg.Input = input.New(cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Events == nil {
		cfg.Events = NewEventLog()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	l := &Loop{
		video:     cfg.Video,
		sim:       cfg.Simulation,
		settings:  cfg.Settings,
		world:     cfg.World,
		surface:   cfg.Surface,
		debug:     cfg.DebugSurface,
		input:     cfg.Input,
		frames:    cfg.Frames,
		timers:    cfg.Timers,
		clock:     NewClock(cfg.Now, cfg.Simulation.MaxFrameTime),
		rng:       rand.New(rand.NewSource(seed)),
		registry:  NewRegistry(),
		events:    cfg.Events,
		snapshots: NewSnapshotPool(),
	}
	l.shared.Store(cfg.Settings)

	l.camera = NewCamera(0.5*float64(cfg.Video.Width), 0.5*float64(cfg.Video.Height), cfg.Video.Width, cfg.Video.Height)
	l.camera.Margin = 10
	l.camera.LineWidth = 0.2

	l.background = NewBackground(l.camera)
	l.background.Prerender()

	l.resolver = NewContactResolver(l)
	if l.world != nil {
		l.world.SetContactListener(func(c Contact) {
			l.resolver.Resolve(c)
		})
	}

	return l
}

// =============================================================================
// FRAME
// =============================================================================

// Tick runs one frame and requests the next one. A paused loop does nothing.
func (l *Loop) Tick() {
	if !l.running.Load() {
		return
	}

	start := time.Now()
	dt, removed := l.update()
	l.draw()
	telemetry.RecordFrame(time.Since(start), dt)

	l.publishSnapshot(dt, removed)

	if l.frames != nil {
		l.frames.RequestFrame(l.Tick)
	}
}

// update advances the simulation one frame. The order is fixed: input,
// debug camera keys, entities, player, camera, shake, physics step,
// clear forces, removal flush.
func (l *Loop) update() (float64, int) {
	l.mailbox.Drain()

	dt := l.clock.Delta()
	l.frame++

	l.input.Update(dt)
	l.camera.HandleDebugKeys(l.input, dt)

	l.registry.Each(func(e Entity) {
		e.Update(dt)
	})

	if l.player != nil {
		l.player.Update(dt)
	}
	l.camera.Update(dt)
	l.shake.Update(dt)

	if l.world != nil {
		stepStart := time.Now()
		l.stepping = true
		l.world.Step(l.sim.FixedStep, l.sim.VelocityIterations, l.sim.PositionIterations)
		l.stepping = false
		telemetry.RecordStep(time.Since(stepStart))

		l.world.ClearForces()
	}

	removed := l.removed.Flush(func(e Entity) {
		l.Remove(e)
	})
	telemetry.RecordRemovals(removed)

	bodies := 0
	if l.world != nil {
		bodies = l.world.BodyCount()
	}
	telemetry.UpdateCounts(l.registry.Len(), bodies)

	l.events.Record(EventTypeFrame, l.frame, FramePayload{
		DeltaTimeNs: int64(dt * 1e9),
		Entities:    l.registry.Len(),
		Removed:     removed,
	})

	return dt, removed
}

// draw renders the frame: level fill, then camera and shake transforms,
// background, entities, player and camera outline, then the input overlay.
func (l *Loop) draw() {
	if l.settings.Debug && l.debug != nil && l.world != nil {
		l.drawDebug()
	}

	s := l.surface
	if s == nil {
		return
	}

	if fill := l.levelFill(); fill.A != 0 {
		render.FillRect(s, fill)
	} else {
		render.ClearRect(s)
	}

	s.Push()
	l.camera.ApplyTransform(s)
	l.shake.ApplyTransform(s)

	if l.settings.Background {
		l.background.Draw(s)
	}

	l.registry.Each(func(e Entity) {
		e.Draw(s)
	})

	if l.player != nil {
		l.player.Draw(s)
	}
	l.camera.Draw(s)

	s.Pop()

	l.input.Draw(s)

	if p, ok := s.(render.Presenter); ok {
		p.Present()
	}
}

// drawDebug renders the raw physics shapes centered on the debug surface.
func (l *Loop) drawDebug() {
	d := l.debug
	render.ClearRect(d)

	d.Push()
	d.Translate(0.5*float64(d.Width()), 0.5*float64(d.Height()))
	l.world.DebugDraw(d)
	d.Pop()

	if p, ok := d.(render.Presenter); ok {
		p.Present()
	}
}

func (l *Loop) levelFill() color.NRGBA {
	if l.level == nil {
		return color.NRGBA{}
	}
	return l.level.Fill
}

// =============================================================================
// ENTITIES
// =============================================================================

// Add registers e and attaches it to the loop. Adding a registered entity
// is a no-op.
func (l *Loop) Add(e Entity) {
	if e == nil || l.registry.Contains(e) {
		return
	}
	l.attach(e)
	l.registry.Add(e)
}

func (l *Loop) attach(e Entity) {
	o := e.Base()
	if o.ID == 0 {
		l.nextID++
		o.ID = l.nextID
	}
	o.game = l
}

// Remove unregisters e, destroys its bodies and detaches it. Removing an
// entity that is not registered is a no-op. Called from inside the physics
// step it falls back to Discard.
func (l *Loop) Remove(e Entity) bool {
	if l.stepping {
		l.Discard(e)
		return false
	}
	if e == nil || !l.registry.Remove(e) {
		return false
	}

	o := e.Base()
	bodies := len(o.Bodies)
	l.detach(o, true)

	l.events.Record(EventTypeEntityRemoved, l.frame, EntityRemovedPayload{
		EntityID: o.ID,
		Bodies:   bodies,
	})
	return true
}

// detach clears the loop reference and, when destroy is set, the entity's bodies.
func (l *Loop) detach(o *Object, destroy bool) {
	if destroy && l.world != nil {
		for _, b := range o.Bodies {
			l.world.DestroyBody(b)
		}
	}
	o.Bodies = nil
	o.game = nil
	if o.Emotion != nil {
		o.Emotion.Reset()
	}
}

// Discard queues e for removal at the end of the frame. Safe to call from
// anywhere on the frame goroutine, including contact callbacks.
func (l *Loop) Discard(e Entity) {
	l.removed.Push(e)
}

// SetPlayer attaches p as the player. A nil p clears the player.
func (l *Loop) SetPlayer(p Entity) {
	if l.player != nil && l.player != p {
		l.detach(l.player.Base(), true)
	}
	l.player = p
	if p != nil {
		l.attach(p)
	}
}

// Player returns the current player, or nil.
func (l *Loop) Player() Entity {
	return l.player
}

// Clear empties the registry, drops the player and destroys every body.
func (l *Loop) Clear() {
	for _, e := range l.registry.Clear() {
		l.detach(e.Base(), false)
	}
	if l.player != nil {
		l.detach(l.player.Base(), false)
		l.player = nil
	}
	l.camera.Target = nil
	l.level = nil

	if l.world != nil {
		l.world.ClearForces()
		l.world.DestroyAllBodies()
	}
}

// Load adds the level's entities, sets its player and adopts its fill.
func (l *Loop) Load(level *Level) {
	if level == nil {
		return
	}
	for _, e := range level.Entities {
		l.Add(e)
	}
	if level.Player != nil {
		l.SetPlayer(level.Player)
		l.camera.Target = level.Player
	}
	l.level = level

	l.events.Record(EventTypeLevelLoaded, l.frame, LevelLoadedPayload{
		Name:     level.Name,
		Entities: len(level.Entities),
		Player:   level.Player != nil,
	})
	log.Printf("🗺️ Level %q loaded: %d entities", level.Name, len(level.Entities))
}

// spawnExplosion adds an explosion effect. Only adds to the registry, so it
// is safe inside the physics step.
func (l *Loop) spawnExplosion(x, y float64, fill color.NRGBA) {
	l.Add(NewExplosion(x, y, fill))
	telemetry.RecordExplosion()
}

// =============================================================================
// ACCESSORS (frame goroutine)
// =============================================================================

// Registry returns the entity registry.
func (l *Loop) Registry() *Registry { return l.registry }

// World returns the physics world.
func (l *Loop) World() PhysicsWorld { return l.world }

// Input returns the input source. Its event methods are safe from any goroutine.
func (l *Loop) Input() *input.Input { return l.input }

// Camera returns the camera.
func (l *Loop) Camera() *Camera { return l.camera }

// Shake returns the shake effect.
func (l *Loop) Shake() *Shake { return &l.shake }

// Background returns the background.
func (l *Loop) Background() *Background { return l.background }

// Level returns the loaded level, or nil.
func (l *Loop) Level() *Level { return l.level }

// Rand returns the loop's random source.
func (l *Loop) Rand() *rand.Rand { return l.rng }

// Frame returns the number of frames updated so far.
func (l *Loop) Frame() uint64 { return l.frame }

// Events returns the gameplay event log.
func (l *Loop) Events() *EventLog { return l.events }

// Pending reports whether e is queued for removal this frame.
func (l *Loop) Pending(e Entity) bool { return l.removed.Contains(e) }

// =============================================================================
// CONTROL (any goroutine)
// =============================================================================

// Running reports whether frames are being requested.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Play resumes the loop. A frame is requested only when it was paused, so
// repeated calls do not start a second chain of frames.
func (l *Loop) Play() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	if l.frames != nil {
		l.frames.RequestFrame(l.Tick)
	}
	log.Println("▶️ Loop running")
}

// Pause stops the loop after the current frame. Pending timers keep running
// and are delivered through the mailbox once frames resume.
func (l *Loop) Pause() {
	if l.running.CompareAndSwap(true, false) {
		log.Println("⏸️ Loop paused")
	}
}

// Toggle flips between Play and Pause and returns the new state.
func (l *Loop) Toggle() bool {
	if l.Running() {
		l.Pause()
		return false
	}
	l.Play()
	return true
}

// Blur pauses the loop and releases every input, as when focus is lost.
func (l *Loop) Blur() {
	l.Pause()
	l.input.Blur()
}

// Post queues fn to run on the frame goroutine at the start of the next update.
func (l *Loop) Post(fn func()) {
	l.mailbox.Post(fn)
}

// Drain runs the queued mailbox closures now. Hosts call it on the frame
// goroutine while the loop is paused so commands still apply.
func (l *Loop) Drain() int {
	return l.mailbox.Drain()
}

// ApplySettings replaces the quality settings from the next frame on.
func (l *Loop) ApplySettings(s config.SettingsConfig) {
	l.shared.Store(s)
	l.Post(func() {
		l.settings = s
	})
}

// SetDebug toggles the physics debug overlay.
func (l *Loop) SetDebug(enabled bool) {
	s := l.Settings()
	s.Debug = enabled
	l.ApplySettings(s)
}

// Settings returns the latest applied or requested settings.
func (l *Loop) Settings() config.SettingsConfig {
	return l.shared.Load().(config.SettingsConfig)
}

// GetSnapshot returns the latest published snapshot, or nil before the first frame.
func (l *Loop) GetSnapshot() *FrameSnapshot {
	return l.snapshots.AcquireRead()
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func (l *Loop) publishSnapshot(dt float64, removed int) {
	snap := l.snapshots.AcquireWrite()
	snap.Frame = l.frame
	snap.DeltaTime = dt
	snap.Running = l.running.Load()
	snap.Debug = l.settings.Debug
	snap.Removals = removed
	snap.EntityCount = l.registry.Len()
	snap.Level = ""
	if l.level != nil {
		snap.Level = l.level.Name
	}
	snap.Bodies = 0
	if l.world != nil {
		snap.Bodies = l.world.BodyCount()
	}

	for _, e := range l.registry.entities {
		o := e.Base()
		if len(snap.Entities) < MaxSnapshotEntities {
			snap.Entities = append(snap.Entities, entitySnapshot(o))
		}
		if o.Trigger != nil {
			ts := TriggerSnapshot{ID: o.ID, Active: o.Trigger.Active, Matched: o.Trigger.Matched()}
			if o.Trigger.Object != nil {
				ts.ObjectID = o.Trigger.Object.Base().ID
			}
			snap.Triggers = append(snap.Triggers, ts)
		}
	}

	if l.player != nil {
		o := l.player.Base()
		ps := l.snapshots.playerSlot()
		ps.EntitySnapshot = entitySnapshot(o)
		if o.Emotion != nil {
			ps.Emotion = o.Emotion.State().String()
			ps.Pending = o.Emotion.Pending()
		}
		snap.Player = ps
	}

	c := l.camera
	snap.Camera = CameraSnapshot{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height, Angle: c.Angle}
	snap.Shake = ShakeSnapshot{OffsetX: l.shake.OffsetX, OffsetY: l.shake.OffsetY, Active: l.shake.Active()}

	l.snapshots.PublishWrite()
}

func entitySnapshot(o *Object) EntitySnapshot {
	return EntitySnapshot{
		ID:       o.ID,
		Role:     o.Role().String(),
		Material: o.Material,
		X:        o.X,
		Y:        o.Y,
		Angle:    o.Angle,
		Bodies:   len(o.Bodies),
	}
}
