package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/time/rate"
)

func TestEventLogStopped(t *testing.T) {
	el := NewEventLog()

	if el.Record(EventTypeFrame, 1, FramePayload{}) {
		t.Error("Expected record on a stopped log to fail")
	}
	if el.Stats().Total != 0 {
		t.Errorf("Expected 0 events, got %d", el.Stats().Total)
	}
	el.Stop()
}

func TestEventLogWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	el.Record(EventTypePlayerHit, 3, PlayerHitPayload{PlayerID: 1, OtherID: 2, Material: Antimatter})
	el.Record(EventTypeAnnihilation, 4, AnnihilationPayload{AID: 5, BID: 6})
	el.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("Invalid line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventTypePlayerHit || events[0].Frame != 3 {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[0].Sequence >= events[1].Sequence {
		t.Error("Expected increasing sequence numbers")
	}

	var hit PlayerHitPayload
	if err := json.Unmarshal(events[0].Payload, &hit); err != nil {
		t.Fatalf("Invalid payload: %v", err)
	}
	if hit.OtherID != 2 || hit.Material != Antimatter {
		t.Errorf("Unexpected payload: %+v", hit)
	}
}

// TestEventLogBudgetPerType verifies an annihilation storm is throttled
// without starving other event types
func TestEventLogBudgetPerType(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer el.Stop()

	accepted := 0
	for i := 0; i < 1000; i++ {
		if el.Record(EventTypeAnnihilation, uint64(i), AnnihilationPayload{}) {
			accepted++
		}
	}

	if accepted >= 1000 {
		t.Fatal("Expected the annihilation budget to drop part of the storm")
	}
	if accepted < eventBudgets[EventTypeAnnihilation].burst {
		t.Errorf("Expected at least the burst of %d, got %d", eventBudgets[EventTypeAnnihilation].burst, accepted)
	}

	if !el.Record(EventTypePlayerHit, 1000, PlayerHitPayload{}) {
		t.Error("Expected a player hit to have its own budget")
	}
	if !el.Record(EventTypeLevelLoaded, 1000, LevelLoadedPayload{Name: "demo"}) {
		t.Error("Expected a level load to have its own budget")
	}

	stats := el.Stats()
	storm := stats.ByType[EventTypeAnnihilation.String()]
	if storm.Accepted != uint64(accepted) || storm.Throttled != uint64(1000-accepted) {
		t.Errorf("Unexpected annihilation stats: %+v", storm)
	}
	if stats.ByType[EventTypeLevelLoaded.String()].Accepted != 1 {
		t.Errorf("Expected 1 level event in stats, got %+v", stats.ByType)
	}
	if stats.Total != uint64(accepted)+2 {
		t.Errorf("Expected total %d, got %d", accepted+2, stats.Total)
	}
}

func TestEventLogEvictsOldest(t *testing.T) {
	el := NewEventLog()
	el.running.Store(true) // no writer, so nothing drains the queue
	for i := range el.limiters {
		el.limiters[i] = rate.NewLimiter(rate.Inf, 0)
	}

	for i := 0; i < EventQueueSize+5; i++ {
		el.Record(EventTypeEntityRemoved, uint64(i), EntityRemovedPayload{})
	}

	stats := el.Stats()
	if stats.Pending != EventQueueSize {
		t.Errorf("Expected a full queue of %d, got %d", EventQueueSize, stats.Pending)
	}
	if stats.Dropped != 5 {
		t.Errorf("Expected 5 evicted events, got %d", stats.Dropped)
	}

	batch := el.take(nil)
	if batch[0].Frame != 5 {
		t.Errorf("Expected the oldest survivor from frame 5, got %d", batch[0].Frame)
	}
}
