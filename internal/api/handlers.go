package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"antimatter/internal/config"
	"antimatter/internal/game"
)

// maxLevelBytes caps a level descriptor upload.
const maxLevelBytes = 1 << 20

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snapshot := h.loop.GetSnapshot()
	if snapshot == nil {
		// Nothing rendered yet
		writeJSON(w, &game.FrameSnapshot{Running: h.loop.Running()})
		return
	}
	writeJSON(w, snapshot)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"running": h.loop.Running(),
		"events":  h.loop.Events().Stats(),
	}
	if snapshot := h.loop.GetSnapshot(); snapshot != nil {
		stats["frame"] = snapshot.Frame
		stats["entityCount"] = snapshot.EntityCount
		stats["bodies"] = snapshot.Bodies
		stats["dt"] = snapshot.DeltaTime
	}
	if h.host != nil {
		stats["host"] = map[string]uint64{
			"frames": h.host.Frames(),
			"idles":  h.host.Idles(),
		}
	}
	if h.frame != nil {
		stats["presented"] = h.frame.Frames()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Running *bool `json:"running"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Running == nil {
		writeError(w, "running is required", http.StatusBadRequest)
		return
	}

	if *req.Running {
		h.loop.Play()
	} else {
		h.loop.Pause()
	}
	writeJSON(w, map[string]bool{"running": h.loop.Running()})
}

func (h *routerHandlers) handleRunToggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"running": h.loop.Toggle()})
}

func (h *routerHandlers) handleBlur(w http.ResponseWriter, r *http.Request) {
	h.loop.Blur()
	writeJSON(w, map[string]bool{"running": h.loop.Running()})
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req keyMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Key <= 0 {
		writeError(w, "key is required", http.StatusBadRequest)
		return
	}

	applyKey(h.loop, req)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.loop.Settings())
}

func (h *routerHandlers) handlePostSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Explosions *bool `json:"explosions"`
		Background *bool `json:"background"`
		Debug      *bool `json:"debug"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s := h.currentSettings()
	if req.Explosions != nil {
		s.Explosions = *req.Explosions
	}
	if req.Background != nil {
		s.Background = *req.Background
	}
	if req.Debug != nil {
		s.Debug = *req.Debug
	}

	writeJSON(w, h.storeSettings(s))
}

func (h *routerHandlers) handlePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "preset")

	if h.settings == nil {
		preset, ok := config.Preset(name)
		if !ok {
			writeError(w, "Unknown preset", http.StatusNotFound)
			return
		}
		s := h.loop.Settings()
		s.Explosions = preset.Explosions
		s.Background = preset.Background
		h.loop.ApplySettings(s)
		writeJSON(w, s)
		return
	}

	s, ok, err := h.settings.ApplyPreset(name)
	if !ok {
		writeError(w, "Unknown preset", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("⚠️ Settings not saved: %v", err)
	}
	h.loop.ApplySettings(s)
	log.Printf("⚙️ Quality preset %s applied", name)
	writeJSON(w, s)
}

func (h *routerHandlers) handleDebug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}

	// An empty body toggles
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s := h.currentSettings()
	if req.Enabled == nil {
		s.Debug = !s.Debug
	} else {
		s.Debug = *req.Enabled
	}

	s = h.storeSettings(s)
	writeJSON(w, map[string]bool{"enabled": s.Debug})
}

func (h *routerHandlers) handleLevel(w http.ResponseWriter, r *http.Request) {
	if h.levels == nil {
		writeError(w, "Level loading is disabled", http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLevelBytes))
	if err != nil {
		writeError(w, "Level too large", http.StatusRequestEntityTooLarge)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.levelTimeout)
	defer cancel()

	if err := h.levels.LoadData(ctx, data, true); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			writeError(w, "Level load timed out", http.StatusGatewayTimeout)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	writePNG(w, h.frame)
}

func (h *routerHandlers) handleDebugPNG(w http.ResponseWriter, r *http.Request) {
	writePNG(w, h.debug)
}

// currentSettings prefers the store, which survives restarts.
func (h *routerHandlers) currentSettings() config.SettingsConfig {
	if h.settings != nil {
		return h.settings.Get()
	}
	return h.loop.Settings()
}

// storeSettings saves s and applies it to the loop. A failed save is logged;
// the loop still switches.
func (h *routerHandlers) storeSettings(s config.SettingsConfig) config.SettingsConfig {
	if h.settings != nil {
		saved, err := h.settings.Set(s)
		if err != nil {
			log.Printf("⚠️ Settings not saved: %v", err)
		}
		s = saved
	}
	h.loop.ApplySettings(s)
	log.Printf("⚙️ Settings changed: explosions=%v background=%v debug=%v", s.Explosions, s.Background, s.Debug)
	return s
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writePNG(w http.ResponseWriter, src FrameSource) {
	if src == nil || src.Frames() == 0 {
		writeError(w, "No frame presented yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := src.WritePNG(w); err != nil {
		log.Printf("⚠️ Failed to encode frame: %v", err)
	}
}
