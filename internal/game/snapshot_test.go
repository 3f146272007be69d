package game

import "testing"

func TestSnapshotPoolTripleBuffer(t *testing.T) {
	pool := NewSnapshotPool()

	if pool.AcquireRead() != nil {
		t.Fatal("Expected nil before the first publish")
	}

	w := pool.AcquireWrite()
	w.Frame = 1
	w.Entities = append(w.Entities, EntitySnapshot{ID: 7})
	pool.PublishWrite()

	r := pool.AcquireRead()
	if r == nil || r.Frame != 1 || len(r.Entities) != 1 {
		t.Fatalf("Expected published frame 1, got %+v", r)
	}

	// The next write must not touch the slot being read.
	w2 := pool.AcquireWrite()
	if w2 == r {
		t.Fatal("Expected a different slot for the next write")
	}
	w2.Frame = 2
	if r.Frame != 1 || len(r.Entities) != 1 {
		t.Error("Expected the read slot to stay intact while writing")
	}
	pool.PublishWrite()

	if got := pool.AcquireRead(); got.Frame != 2 || got.Sequence <= r.Sequence {
		t.Errorf("Expected frame 2 with a newer sequence, got %+v", got)
	}
}

func TestSnapshotPoolResetsSlices(t *testing.T) {
	pool := NewSnapshotPool()

	for i := 0; i < 3; i++ {
		w := pool.AcquireWrite()
		w.Entities = append(w.Entities, EntitySnapshot{ID: uint64(i)})
		w.Triggers = append(w.Triggers, TriggerSnapshot{ID: uint64(i)})
		w.Player = pool.playerSlot()
		pool.PublishWrite()
	}

	w := pool.AcquireWrite()
	if len(w.Entities) != 0 || len(w.Triggers) != 0 || w.Player != nil {
		t.Error("Expected a reused slot to start empty")
	}
	if cap(w.Entities) < MaxSnapshotEntities {
		t.Errorf("Expected capacity %d kept, got %d", MaxSnapshotEntities, cap(w.Entities))
	}
}
