package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"antimatter/internal/config"
	"antimatter/internal/game"
	"antimatter/internal/input"
)

// LoopInterface defines the frame loop methods used by the API.
// Every method must be safe to call from any goroutine.
type LoopInterface interface {
	// GetSnapshot returns the latest published frame, or nil before the first
	GetSnapshot() *game.FrameSnapshot
	Running() bool
	Play()
	Pause()
	Toggle() bool
	// Blur pauses and releases every input
	Blur()
	ApplySettings(s config.SettingsConfig)
	Settings() config.SettingsConfig
	Input() *input.Input
	Events() *game.EventLog
}

// LevelLoader loads level descriptors into the loop.
type LevelLoader interface {
	LoadData(ctx context.Context, data []byte, replace bool) error
}

// SettingsStore keeps the quality settings, persisting them when it can.
type SettingsStore interface {
	Get() config.SettingsConfig
	Set(s config.SettingsConfig) (config.SettingsConfig, error)
	ApplyPreset(name string) (config.SettingsConfig, bool, error)
}

// FrameSource is a presented surface that can be encoded.
type FrameSource interface {
	WritePNG(w io.Writer) error
	Frames() uint64
}

// HostStats reports frame host counters.
type HostStats interface {
	Frames() uint64
	Idles() uint64
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Loop: fakeLoop,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Loop is the frame loop (required)
	Loop LoopInterface

	// Levels loads POST /api/level bodies. Nil disables the endpoint.
	Levels LevelLoader

	// Settings persists settings changes. Nil applies them to the loop only.
	Settings SettingsStore

	// Frame and Debug serve the last presented frame and debug overlay.
	Frame FrameSource
	Debug FrameSource

	// Host is optional and adds frame host counters to /api/stats
	Host HostStats

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses AllowedOrigins.
	CORSOrigins []string

	// LevelTimeout bounds a level load. Zero uses 5 seconds.
	LevelTimeout time.Duration

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	loop         LoopInterface
	levels       LevelLoader
	settings     SettingsStore
	frame        FrameSource
	debug        FrameSource
	host         HostStats
	levelTimeout time.Duration
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine: no listeners are opened and no broadcast loop is started.
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		loop:         cfg.Loop,
		levels:       cfg.Levels,
		settings:     cfg.Settings,
		frame:        cfg.Frame,
		debug:        cfg.Debug,
		host:         cfg.Host,
		levelTimeout: cfg.LevelTimeout,
	}
	if h.levelTimeout <= 0 {
		h.levelTimeout = 5 * time.Second
	}

	r.Route("/api", func(r chi.Router) {
		// Frame state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/frame.png", h.handleFramePNG)
		r.Get("/debug.png", h.handleDebugPNG)

		// Loop control
		r.Post("/run", h.handleRun)
		r.Post("/run/toggle", h.handleRunToggle)
		r.Post("/blur", h.handleBlur)
		r.Post("/input", h.handleInput)

		// Settings
		r.Get("/settings", h.handleGetSettings)
		r.Post("/settings", h.handlePostSettings)
		r.Post("/settings/{preset}", h.handlePreset)
		r.Post("/debug", h.handleDebug)

		// Levels
		r.Post("/level", h.handleLevel)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}
