// Package host runs the frame loop on a ticker goroutine and delivers
// delayed callbacks back onto it.
package host

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// FrameHost stands in for a display refresh callback: a ticker fires at the
// configured FPS and each tick runs the frame that was requested, if any.
// Only the last request before a tick survives, so duplicate frame chains
// collapse into one.
type FrameHost struct {
	interval time.Duration
	idle     func() // Runs on ticks with no requested frame

	mu   sync.Mutex
	next func()

	runMu    sync.Mutex
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}

	frames atomic.Uint64
	idles  atomic.Uint64
}

// NewFrameHost creates a stopped host ticking at fps. idle may be nil.
func NewFrameHost(fps int, idle func()) *FrameHost {
	if fps <= 0 {
		fps = 60
	}
	return &FrameHost{
		interval: time.Second / time.Duration(fps),
		idle:     idle,
	}
}

// RequestFrame schedules fn for the next tick, replacing any earlier request.
func (h *FrameHost) RequestFrame(fn func()) {
	h.mu.Lock()
	h.next = fn
	h.mu.Unlock()
}

// Start begins ticking on a new goroutine.
func (h *FrameHost) Start() {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.stopChan = make(chan struct{})
	h.done = make(chan struct{})
	h.ticker = time.NewTicker(h.interval)

	go h.run(h.ticker, h.stopChan, h.done)

	log.Printf("🎮 Frame host started at %v per frame", h.interval)
}

// Stop halts the ticker and waits for the frame in progress.
func (h *FrameHost) Stop() {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	h.ticker.Stop()
	close(h.stopChan)
	<-h.done

	log.Println("🛑 Frame host stopped")
}

func (h *FrameHost) run(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ticker.C:
			h.step()
		case <-stop:
			return
		}
	}
}

// step runs the pending frame, or the idle hook when nothing was requested.
func (h *FrameHost) step() {
	h.mu.Lock()
	fn := h.next
	h.next = nil
	h.mu.Unlock()

	if fn != nil {
		h.frames.Add(1)
		fn()
		return
	}
	h.idles.Add(1)
	if h.idle != nil {
		h.idle()
	}
}

// Frames returns how many requested frames ran.
func (h *FrameHost) Frames() uint64 {
	return h.frames.Load()
}

// Idles returns how many ticks had no requested frame.
func (h *FrameHost) Idles() uint64 {
	return h.idles.Load()
}
