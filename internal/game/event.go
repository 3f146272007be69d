package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeFrame             // Frame boundary with clamped delta
	EventTypePlayerHit
	EventTypeAnnihilation
	EventTypeTriggerMatch
	EventTypeEntityRemoved
	EventTypeLevelLoaded
	eventTypeCount
)

// EventVersion for backwards compatibility of the log format
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence
	Frame     uint64          `json:"frame"`     // Frame this occurred in
	Payload   json.RawMessage `json:"payload"`   // Typed payload, see below
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeFrame:
		return "frame"
	case EventTypePlayerHit:
		return "player_hit"
	case EventTypeAnnihilation:
		return "annihilation"
	case EventTypeTriggerMatch:
		return "trigger_match"
	case EventTypeEntityRemoved:
		return "entity_removed"
	case EventTypeLevelLoaded:
		return "level_loaded"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// FramePayload contains frame boundary information
type FramePayload struct {
	DeltaTimeNs int64 `json:"deltaTimeNs"`
	Entities    int   `json:"entities"`
	Removed     int   `json:"removed"`
}

// PlayerHitPayload describes a player touching an incompatible entity
type PlayerHitPayload struct {
	PlayerID uint64   `json:"playerId"`
	OtherID  uint64   `json:"otherId"`
	Material Material `json:"material"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

// AnnihilationPayload describes two incompatible entities destroying each other
type AnnihilationPayload struct {
	AID       uint64   `json:"aId"`
	BID       uint64   `json:"bId"`
	AMaterial Material `json:"aMaterial"`
	BMaterial Material `json:"bMaterial"`
}

// TriggerMatchPayload describes a trigger recording its object
type TriggerMatchPayload struct {
	TriggerID uint64 `json:"triggerId"`
	ObjectID  uint64 `json:"objectId"`
}

// EntityRemovedPayload describes an entity leaving the registry
type EntityRemovedPayload struct {
	EntityID uint64 `json:"entityId"`
	Bodies   int    `json:"bodies"`
}

// LevelLoadedPayload describes a loaded level
type LevelLoadedPayload struct {
	Name     string `json:"name"`
	Entities int    `json:"entities"`
	Player   bool   `json:"player"`
}

// NewEvent creates an event stamped with the current time. A payload that
// cannot be encoded is recorded as null.
func NewEvent(eventType EventType, frame uint64, payload interface{}) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Frame:     frame,
		Payload:   data,
	}
}
