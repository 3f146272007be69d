// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for simulation, video and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// VIDEO & CANVAS CONFIGURATION
// =============================================================================

// VideoConfig holds the render surface settings.
// The frame host ticks at FPS; the surfaces are Width x Height pixels.
type VideoConfig struct {
	Width  int // Surface width in pixels
	Height int // Surface height in pixels
	FPS    int // Frames requested per second
}

// DefaultVideo returns the default video configuration.
func DefaultVideo() VideoConfig {
	return VideoConfig{
		Width:  640,
		Height: 480,
		FPS:    60,
	}
}

// VideoFromEnv returns video configuration with environment variable overrides.
func VideoFromEnv() VideoConfig {
	cfg := DefaultVideo()

	if w := getEnvInt("SCREEN_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("SCREEN_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if fps := getEnvInt("FPS", 0); fps > 0 {
		cfg.FPS = fps
	}

	return cfg
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimulationConfig holds the frame loop timing and gameplay constants.
type SimulationConfig struct {
	MaxFrameTime       float64       // Upper bound on a frame delta, in milliseconds
	FixedStep          float64       // Physics step, in seconds
	VelocityIterations int           // Solver velocity iterations per step
	PositionIterations int           // Solver position iterations per step
	HitDuration        time.Duration // How long a player stays HIT after a contact
	ShakeMagnitude     float64       // Camera shake magnitude on player hit
	ShakeDuration      float64       // Camera shake duration on player hit, in seconds
}

// DefaultSimulation returns the default simulation configuration.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		MaxFrameTime:       1000.0 / 30,
		FixedStep:          1.0 / 60,
		VelocityIterations: 8,
		PositionIterations: 3,
		HitDuration:        700 * time.Millisecond,
		ShakeMagnitude:     0.5,
		ShakeDuration:      0.2,
	}
}

// SimulationFromEnv returns simulation configuration with environment variable overrides.
func SimulationFromEnv() SimulationConfig {
	cfg := DefaultSimulation()

	if step := getEnvFloat("SIM_FIXED_STEP", 0); step > 0 {
		cfg.FixedStep = step
	}
	if it := getEnvInt("SIM_VELOCITY_ITERATIONS", 0); it > 0 {
		cfg.VelocityIterations = it
	}
	if it := getEnvInt("SIM_POSITION_ITERATIONS", 0); it > 0 {
		cfg.PositionIterations = it
	}

	return cfg
}

// =============================================================================
// QUALITY SETTINGS
// =============================================================================

// SettingsConfig holds the quality toggles that can change at runtime.
type SettingsConfig struct {
	Explosions bool `yaml:"explosions" json:"explosions"`
	Background bool `yaml:"background" json:"background"`
	Debug      bool `yaml:"debug" json:"debug"` // Physics debug overlay
	Persist    bool `yaml:"-" json:"-"`         // Store changes with gdata
}

// High returns the high quality preset.
func High() SettingsConfig {
	return SettingsConfig{Explosions: true, Background: true, Persist: true}
}

// Low returns the low quality preset.
func Low() SettingsConfig {
	return SettingsConfig{Explosions: false, Background: false, Persist: true}
}

// Preset returns the preset with the given name.
func Preset(name string) (SettingsConfig, bool) {
	switch strings.ToLower(name) {
	case "high":
		return High(), true
	case "low":
		return Low(), true
	}
	return SettingsConfig{}, false
}

// SettingsFromEnv returns the quality settings with environment variable overrides.
func SettingsFromEnv() SettingsConfig {
	cfg := High()

	if p, ok := Preset(os.Getenv("QUALITY")); ok {
		cfg = p
	}
	if os.Getenv("DEBUG_DRAW") == "true" {
		cfg.Debug = true
	}
	if os.Getenv("SETTINGS_PERSIST") == "false" {
		cfg.Persist = false
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      int
	DebugPort int // pprof + /metrics, bound to localhost. 0 disables it.
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:      3000,
		DebugPort: 6060,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", -1); p >= 0 {
		cfg.DebugPort = p
	}

	return cfg
}

// =============================================================================
// LEVEL & EVENT LOG CONFIGURATION
// =============================================================================

// LevelConfig selects the level loaded at startup.
type LevelConfig struct {
	Path string // YAML or JSON descriptor. Empty loads the built-in demo.
}

// LevelFromEnv returns the level configuration.
func LevelFromEnv() LevelConfig {
	return LevelConfig{Path: os.Getenv("LEVEL_PATH")}
}

// EventLogConfig controls the gameplay event log.
type EventLogConfig struct {
	Path string // JSONL output. Empty disables file output.
}

// EventLogFromEnv returns the event log configuration.
func EventLogFromEnv() EventLogConfig {
	cfg := EventLogConfig{Path: "events.jsonl"}
	if v, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.Path = v
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Video      VideoConfig
	Simulation SimulationConfig
	Settings   SettingsConfig
	Server     ServerConfig
	Level      LevelConfig
	EventLog   EventLogConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Video:      VideoFromEnv(),
		Simulation: SimulationFromEnv(),
		Settings:   SettingsFromEnv(),
		Server:     ServerFromEnv(),
		Level:      LevelFromEnv(),
		EventLog:   EventLogFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
