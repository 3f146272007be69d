package api

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	router *chi.Mux
	wsHub  *WebSocketHub

	mu         sync.Mutex
	httpServer *http.Server

	broadcastInterval time.Duration
}

// NewServer creates a new API server from cfg.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting the hub or opening network listeners.
func NewServer(cfg RouterConfig) *Server {
	s := &Server{
		wsHub:             NewWebSocketHub(cfg.Loop),
		router:            NewRouter(cfg),
		broadcastInterval: DefaultBroadcastInterval,
	}

	// WebSocket routes need the hub, so they are not part of NewRouter
	s.router.Get("/ws", s.handleWS)

	return s
}

// StartHub starts the WebSocket hub and the snapshot broadcast loop.
func (s *Server) StartHub() {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.broadcastInterval)
}

// Start starts the hub and serves HTTP on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.StartHub()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	log.Printf("🌐 API server starting on %s", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(cfg)
//	server.StartHub()
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, closes WebSocket clients and stops the
// background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.wsHub.Stop()
	return err
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
