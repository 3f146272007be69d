package api_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"antimatter/internal/api"
	"antimatter/internal/game"
)

type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialHub(t *testing.T, loop *MockLoop) (*api.Server, *websocket.Conn) {
	t.Helper()
	server := api.NewServer(api.RouterConfig{
		Loop:           loop,
		DisableLogging: true,
		RateLimitConfig: &api.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
	})
	server.StartHub()
	ts := httptest.NewServer(server.Router())
	t.Cleanup(func() {
		ts.Close()
		server.Shutdown(context.Background())
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return server, conn
}

func readEvent(t *testing.T, conn *websocket.Conn, event string) wsEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg wsEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed waiting for %s: %v", event, err)
		}
		if msg.Event == event {
			return msg
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Timed out waiting for condition")
}

func TestWebSocketHello(t *testing.T) {
	server, conn := dialHub(t, NewMockLoop())

	msg := readEvent(t, conn, "hello")
	var hello struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(msg.Data, &hello); err != nil {
		t.Fatalf("Failed to decode hello: %v", err)
	}
	if len(hello.ID) != 36 {
		t.Errorf("Expected a UUID client id, got %q", hello.ID)
	}

	waitFor(t, func() bool { return server.Hub().ClientCount() == 1 })
}

func TestWebSocketPushesState(t *testing.T) {
	loop := NewMockLoop()
	loop.SetSnapshot(&game.FrameSnapshot{Sequence: 1, Frame: 9, Level: "demo"})
	_, conn := dialHub(t, loop)

	msg := readEvent(t, conn, "game:state")
	var state game.FrameSnapshot
	if err := json.Unmarshal(msg.Data, &state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}
	if state.Frame != 9 || state.Level != "demo" {
		t.Errorf("Unexpected state: %+v", state)
	}
}

func TestWebSocketCommands(t *testing.T) {
	loop := NewMockLoop()
	_, conn := dialHub(t, loop)
	readEvent(t, conn, "hello")

	send := func(v interface{}) {
		t.Helper()
		if err := conn.WriteJSON(v); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	send(map[string]interface{}{"event": "key", "key": 39, "down": true})
	waitFor(t, func() bool {
		loop.Input().Update(0)
		return loop.Input().Key(39)
	})

	send(map[string]interface{}{"event": "run", "running": true})
	waitFor(t, loop.Running)

	send(map[string]interface{}{"event": "toggle"})
	waitFor(t, func() bool { return !loop.Running() })

	loop.Play()
	send(map[string]interface{}{"event": "blur"})
	waitFor(t, func() bool { return loop.blurred.Load() == 1 })
	if loop.Running() {
		t.Error("Expected blur to pause")
	}
}

// TestWebSocketCommandBudget verifies a flooding client loses commands past
// its per-connection burst
func TestWebSocketCommandBudget(t *testing.T) {
	loop := NewMockLoop()
	_, conn := dialHub(t, loop)
	readEvent(t, conn, "hello")

	const sent = 400
	for i := 0; i < sent; i++ {
		if err := conn.WriteJSON(map[string]string{"event": "blur"}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	waitFor(t, func() bool { return loop.blurred.Load() >= 120 })
	time.Sleep(50 * time.Millisecond)

	if n := loop.blurred.Load(); n >= sent {
		t.Errorf("Expected part of %d commands to be dropped, all %d applied", sent, n)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	server := api.NewServer(api.RouterConfig{Loop: NewMockLoop(), DisableLogging: true})
	ts := httptest.NewServer(server.Router())
	defer ts.Close()
	defer server.Shutdown(context.Background())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Error("Expected the upgrade to be rejected")
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"http://localhost.evil.com", false},
		{"https://example.com", false},
	}

	for _, tt := range tests {
		if got := api.IsAllowedOrigin(tt.origin); got != tt.want {
			t.Errorf("IsAllowedOrigin(%q): expected %v, got %v", tt.origin, tt.want, got)
		}
	}
}
