// Package settings persists the quality settings with gdata.
package settings

import (
	"fmt"
	"log"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"antimatter/internal/config"
)

const (
	settingsObject   = "settings"
	settingsProperty = "quality"
)

// Open opens the gdata store for appName. Callers that get an error should
// fall back to a Manager without a store.
func Open(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return m, nil
}

// Manager holds the current settings and saves them when they change.
// A nil store keeps settings in memory only.
type Manager struct {
	mu       sync.RWMutex
	store    *gdata.Manager
	defaults config.SettingsConfig
	current  config.SettingsConfig
}

// NewManager creates a manager and loads any saved settings over defaults.
// A failed load is logged and leaves the defaults in place.
func NewManager(store *gdata.Manager, defaults config.SettingsConfig) *Manager {
	m := &Manager{
		store:    store,
		defaults: defaults,
		current:  defaults,
	}
	if err := m.Load(); err != nil {
		log.Printf("⚠️ Failed to load settings: %v (using defaults)", err)
	}
	return m
}

// Load reads the saved settings. Without a store, with persistence off or
// with nothing saved yet, the defaults are used.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = m.defaults
	if !m.persistent() || !m.store.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := m.store.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := m.defaults
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.Persist = m.defaults.Persist

	m.current = loaded
	log.Printf("✅ Settings loaded: explosions=%v background=%v debug=%v",
		loaded.Explosions, loaded.Background, loaded.Debug)
	return nil
}

// Save writes the current settings. It is a no-op without a store.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.save()
}

func (m *Manager) save() error {
	if !m.persistent() {
		return nil
	}

	data, err := yaml.Marshal(m.current)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := m.store.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (m *Manager) persistent() bool {
	return m.store != nil && m.defaults.Persist
}

// Get returns the current settings.
func (m *Manager) Get() config.SettingsConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set replaces the settings and saves them. The new settings stay current
// even when saving fails.
func (m *Manager) Set(s config.SettingsConfig) (config.SettingsConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.Persist = m.defaults.Persist
	m.current = s
	return s, m.save()
}

// Update applies fn to a copy of the current settings and stores the result.
func (m *Manager) Update(fn func(*config.SettingsConfig)) (config.SettingsConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	fn(&s)
	s.Persist = m.defaults.Persist
	m.current = s
	return s, m.save()
}

// ApplyPreset switches to the named preset, keeping the debug overlay as is.
func (m *Manager) ApplyPreset(name string) (config.SettingsConfig, bool, error) {
	preset, ok := config.Preset(name)
	if !ok {
		return m.Get(), false, nil
	}
	s, err := m.Update(func(s *config.SettingsConfig) {
		s.Explosions = preset.Explosions
		s.Background = preset.Background
	})
	return s, true, err
}
