package game

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventQueueSize     = 1024                   // Events held between flushes
	EventFlushInterval = 100 * time.Millisecond // How often the writer drains the queue
)

// eventBudget is the sustained rate and burst allowed for one event type.
type eventBudget struct {
	perSec rate.Limit
	burst  int
}

// eventBudgets caps each event type on its own, so an annihilation storm
// cannot crowd hits, triggers or level loads out of the log.
var eventBudgets = [eventTypeCount]eventBudget{
	EventTypeUnknown:       {10, 10},
	EventTypeFrame:         {240, 240},
	EventTypePlayerHit:     {30, 30},
	EventTypeAnnihilation:  {200, 200},
	EventTypeTriggerMatch:  {60, 60},
	EventTypeEntityRemoved: {400, 400},
	EventTypeLevelLoaded:   {10, 10},
}

// EventTypeStats counts what happened to one event type.
type EventTypeStats struct {
	Accepted  uint64 `json:"accepted"`
	Throttled uint64 `json:"throttled"`
}

// EventStats is a point-in-time view of the log.
type EventStats struct {
	Running bool                      `json:"running"`
	Total   uint64                    `json:"total"`
	Dropped uint64                    `json:"dropped"` // Throttled plus evicted from a full queue
	Pending int                       `json:"pending"`
	ByType  map[string]EventTypeStats `json:"byType"`
}

// EventLog records gameplay events as JSON lines. Each event type has its own
// rate budget; a full queue evicts the oldest event.
type EventLog struct {
	limiters [eventTypeCount]*rate.Limiter

	mu       sync.Mutex
	queue    []Event
	sequence uint64

	accepted  [eventTypeCount]atomic.Uint64
	throttled [eventTypeCount]atomic.Uint64
	evicted   atomic.Uint64

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	file *os.File
	out  *bufio.Writer
}

// NewEventLog creates a stopped event log. Records are refused until Start.
func NewEventLog() *EventLog {
	el := &EventLog{
		queue:    make([]Event, 0, EventQueueSize),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for t, b := range eventBudgets {
		el.limiters[t] = rate.NewLimiter(b.perSec, b.burst)
	}
	return el
}

// Start opens path for append and starts the writer. An empty path keeps
// counting and queueing but writes nothing.
func (el *EventLog) Start(path string) error {
	if el.running.Load() {
		return nil
	}
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
		el.out = bufio.NewWriter(file)
	}

	el.running.Store(true)
	go el.writer()
	return nil
}

// Stop flushes what is queued and closes the file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		wasRunning := el.running.Swap(false)
		close(el.stopChan)
		if wasRunning {
			<-el.done
		}
		if el.file != nil {
			el.file.Close()
		}
	})
}

// Record queues an event of type t. It returns false when the log is stopped
// or t is over its budget.
func (el *EventLog) Record(t EventType, frame uint64, payload interface{}) bool {
	if !el.running.Load() {
		return false
	}
	if t >= eventTypeCount {
		t = EventTypeUnknown
	}
	if !el.limiters[t].Allow() {
		el.throttled[t].Add(1)
		return false
	}

	ev := NewEvent(t, frame, payload)

	el.mu.Lock()
	el.sequence++
	ev.Sequence = el.sequence
	if len(el.queue) == EventQueueSize {
		copy(el.queue, el.queue[1:])
		el.queue = el.queue[:len(el.queue)-1]
		el.evicted.Add(1)
	}
	el.queue = append(el.queue, ev)
	el.mu.Unlock()

	el.accepted[t].Add(1)
	return true
}

func (el *EventLog) writer() {
	defer close(el.done)

	ticker := time.NewTicker(EventFlushInterval)
	defer ticker.Stop()

	var batch []Event
	for {
		select {
		case <-el.stopChan:
			el.flush(el.take(batch[:0]))
			return
		case <-ticker.C:
			batch = el.take(batch[:0])
			el.flush(batch)
		}
	}
}

// take moves the queued events into batch.
func (el *EventLog) take(batch []Event) []Event {
	el.mu.Lock()
	batch = append(batch, el.queue...)
	el.queue = el.queue[:0]
	el.mu.Unlock()
	return batch
}

func (el *EventLog) flush(batch []Event) {
	if el.out == nil || len(batch) == 0 {
		return
	}
	enc := json.NewEncoder(el.out)
	for i := range batch {
		if err := enc.Encode(&batch[i]); err != nil {
			log.Printf("⚠️ Event log: %v", err)
		}
	}
	if err := el.out.Flush(); err != nil {
		log.Printf("⚠️ Event log flush: %v", err)
	}
}

// Stats returns the counters.
func (el *EventLog) Stats() EventStats {
	el.mu.Lock()
	pending := len(el.queue)
	el.mu.Unlock()

	s := EventStats{
		Running: el.running.Load(),
		Pending: pending,
		Dropped: el.evicted.Load(),
		ByType:  make(map[string]EventTypeStats, eventTypeCount),
	}
	for t := EventType(0); t < eventTypeCount; t++ {
		ts := EventTypeStats{
			Accepted:  el.accepted[t].Load(),
			Throttled: el.throttled[t].Load(),
		}
		s.Total += ts.Accepted
		s.Dropped += ts.Throttled
		if ts.Accepted > 0 || ts.Throttled > 0 {
			s.ByType[t.String()] = ts
		}
	}
	return s
}

// Count returns how many events of type t were accepted.
func (el *EventLog) Count(t EventType) uint64 {
	if t >= eventTypeCount {
		return 0
	}
	return el.accepted[t].Load()
}
