package features

import (
	"sync"
)

// SettingsStore is a concurrency-safe key/value configuration
type SettingsStore struct {
	mux    sync.RWMutex
	values map[string]any
}

var (
	settingsOnce sync.Once
	settings     *SettingsStore
)

// Settings returns the process-wide settings, created on first use
func Settings() *SettingsStore {
	settingsOnce.Do(func() {
		settings = &SettingsStore{
			values: map[string]any{
				"app_name": "Python & JavaScript Presentation",
				"version":  "1.0.0",
				"debug":    true,
				"features": []string{"decorators", "context_managers", "metaclasses"},
			},
		}
	})
	return settings
}

// Get returns the value of key or def when unset
func (s *SettingsStore) Get(key string, def any) any {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores value under key
func (s *SettingsStore) Set(key string, value any) {
	s.mux.Lock()
	s.values[key] = value
	s.mux.Unlock()
}

// Subset returns the values of keys, nil for unset ones
func (s *SettingsStore) Subset(keys ...string) map[string]any {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = s.values[k]
	}
	return out
}
