package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// DefaultBroadcastInterval is how often game:state is pushed
	DefaultBroadcastInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Non-browser clients send no origin
		if origin == "" || IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its id, source IP and
// command budget
type wsClient struct {
	id       string
	conn     *websocket.Conn
	ip       string
	commands *rate.Limiter
}

// wsMessage is a command sent by a client.
//
//	{"event": "key", "key": 37, "down": true}
//	{"event": "run", "running": false}
//	{"event": "toggle"}
//	{"event": "blur"}
type wsMessage struct {
	Event   string `json:"event"`
	Key     int    `json:"key"`
	Down    bool   `json:"down"`
	Running bool   `json:"running"`
}

// keyMessage is a key event from HTTP or WebSocket.
type keyMessage struct {
	Key  int  `json:"key"`
	Down bool `json:"down"`
}

func applyKey(loop LoopInterface, k keyMessage) {
	if k.Down {
		loop.Input().KeyDown(k.Key)
	} else {
		loop.Input().KeyUp(k.Key)
	}
}

// WebSocketHub pushes frame snapshots to clients and forwards their
// commands to the loop.
type WebSocketHub struct {
	loop LoopInterface

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	stopChan chan struct{}
	stopOnce sync.Once

	// Connection limiting per IP
	conns *connLimiter
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub(loop LoopInterface) *WebSocketHub {
	return &WebSocketHub{
		loop:       loop,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		stopChan:   make(chan struct{}),
		conns:      newConnLimiter(MaxWSConnectionsPerIP),
	}
}

// Run serves registrations and broadcasts until Stop is called.
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client %s connected from %s (%d total)", client.id, client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.conns.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.send(message)
		}
	}
}

// send writes message to every client, dropping the ones that fail.
func (h *WebSocketHub) send(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, client := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			conn.Close()
			h.conns.Release(client.ip)
			delete(h.clients, conn)
			continue
		}
		IncrementWSMessages()
	}
	UpdateWSConnections(len(h.clients))
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, client := range h.clients {
		conn.Close()
		h.conns.Release(client.ip)
		delete(h.clients, conn)
	}
	UpdateWSConnections(0)
}

// Stop closes every connection and ends Run and the broadcast loop.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes game:state every interval while clients are
// connected and a new snapshot was published.
func (h *WebSocketHub) StartBroadcastLoop(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		var lastSequence uint64

		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}

			if h.ClientCount() == 0 {
				continue
			}
			snapshot := h.loop.GetSnapshot()
			if snapshot == nil || snapshot.Sequence == lastSequence {
				continue
			}
			lastSequence = snapshot.Sequence
			h.Broadcast("game:state", snapshot)
		}
	}()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", MaxWSConnectionsTotal)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.conns.Acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.conns.Release(ip)
		return
	}

	client := &wsClient{
		id:       uuid.New().String(),
		conn:     conn,
		ip:       ip,
		commands: rate.NewLimiter(wsCommandsPerSecond, wsCommandBurst),
	}

	// The hub is not writing to conn until it is registered
	hello, _ := json.Marshal(map[string]interface{}{
		"event": "hello",
		"data":  map[string]string{"id": client.id},
	})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		conn.Close()
		h.conns.Release(ip)
		return
	}

	select {
	case h.register <- client:
	case <-h.stopChan:
		conn.Close()
		h.conns.Release(ip)
		return
	}

	go h.readLoop(client)
}

// readLoop applies client commands until the connection fails.
func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client.conn:
		case <-h.stopChan:
		}
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		if !client.commands.Allow() {
			RecordConnectionRejected("ws_command_rate")
			continue
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		h.handleMessage(client, msg)
	}
}

func (h *WebSocketHub) handleMessage(client *wsClient, msg wsMessage) {
	switch msg.Event {
	case "key":
		if msg.Key > 0 {
			applyKey(h.loop, keyMessage{Key: msg.Key, Down: msg.Down})
		}
	case "run":
		if msg.Running {
			h.loop.Play()
		} else {
			h.loop.Pause()
		}
	case "toggle":
		h.loop.Toggle()
	case "blur":
		h.loop.Blur()
	default:
		log.Printf("📨 Unknown WebSocket event %q from %s", msg.Event, client.id)
	}
}
