package game

import (
	"sync/atomic"
	"time"
)

// MaxSnapshotEntities caps the entities copied into one snapshot.
const MaxSnapshotEntities = 512

// EntitySnapshot is an immutable copy of entity state for readers.
// Uses value types (not pointers) to ensure immutability
type EntitySnapshot struct {
	ID       uint64   `json:"id"`
	Role     string   `json:"role"`
	Material Material `json:"material"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Angle    float64  `json:"angle"`
	Bodies   int      `json:"bodies"`
}

// PlayerSnapshot captures the player.
type PlayerSnapshot struct {
	EntitySnapshot
	Emotion string `json:"emotion"`
	Pending bool   `json:"pending"` // Reset timer scheduled
}

// TriggerSnapshot captures a trigger's state.
type TriggerSnapshot struct {
	ID       uint64 `json:"id"`
	Active   bool   `json:"active"`
	Matched  bool   `json:"matched"`
	ObjectID uint64 `json:"objectId,omitempty"`
}

// CameraSnapshot captures the camera.
type CameraSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// ShakeSnapshot captures screen shake state
type ShakeSnapshot struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Active  bool    `json:"active"`
}

// FrameSnapshot is a complete immutable frame state for readers.
// Entities are capped at MaxSnapshotEntities.
type FrameSnapshot struct {
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp time.Time `json:"timestamp"` // When snapshot was created
	Frame     uint64    `json:"frame"`     // Frame this represents
	DeltaTime float64   `json:"dt"`        // Clamped delta of the frame, seconds

	Running  bool   `json:"running"`
	Debug    bool   `json:"debug"`
	Level    string `json:"level"`
	Bodies   int    `json:"bodies"`
	Removals int    `json:"removals"` // Removed by this frame's flush

	Entities []EntitySnapshot  `json:"entities"`
	Triggers []TriggerSnapshot `json:"triggers"`
	Player   *PlayerSnapshot   `json:"player,omitempty"`
	Camera   CameraSnapshot    `json:"camera"`
	Shake    ShakeSnapshot     `json:"shake"`

	EntityCount int `json:"entityCount"` // Uncapped registry size
}

// SnapshotPool pre-allocates the snapshots the frame goroutine builds into,
// rotating through three slots. Publishing hands readers a private copy, so
// a reader never shares memory with a slot that is being rebuilt.
type SnapshotPool struct {
	snapshots [3]FrameSnapshot
	players   [3]PlayerSnapshot
	writeIdx  uint32 // atomic - producer index
	sequence  uint64 // atomic - monotonic sequence
	latest    atomic.Pointer[FrameSnapshot]
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool() *SnapshotPool {
	pool := &SnapshotPool{}

	for i := 0; i < 3; i++ {
		pool.snapshots[i] = FrameSnapshot{
			Entities: make([]EntitySnapshot, 0, MaxSnapshotEntities),
			Triggers: make([]TriggerSnapshot, 0, 16),
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the frame goroutine)
// Returns a snapshot with reset slices but preserved capacity
func (p *SnapshotPool) AcquireWrite() *FrameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	// Reset ALL slices but keep capacity (zero allocation)
	snap.Entities = snap.Entities[:0]
	snap.Triggers = snap.Triggers[:0]
	snap.Player = nil
	snap.Shake = ShakeSnapshot{}

	// Assign new sequence number
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// playerSlot returns the player storage paired with the current write slot.
func (p *SnapshotPool) playerSlot() *PlayerSnapshot {
	idx := atomic.LoadUint32(&p.writeIdx) % 3
	p.players[idx] = PlayerSnapshot{}
	return &p.players[idx]
}

// PublishWrite publishes a copy of the current write slot.
// Called after snapshot is fully populated
func (p *SnapshotPool) PublishWrite() {
	snap := p.snapshots[atomic.LoadUint32(&p.writeIdx)%3]
	snap.Entities = append(make([]EntitySnapshot, 0, len(snap.Entities)), snap.Entities...)
	snap.Triggers = append(make([]TriggerSnapshot, 0, len(snap.Triggers)), snap.Triggers...)
	if snap.Player != nil {
		player := *snap.Player
		snap.Player = &player
	}
	p.latest.Store(&snap)
}

// AcquireRead gets the latest published snapshot. The result is never
// modified again and may be kept. Returns nil before the first publish.
func (p *SnapshotPool) AcquireRead() *FrameSnapshot {
	return p.latest.Load()
}
