package memory

import (
	"strconv"
	"sync"

	"github.com/tidwall/btree"

	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in an ordered map for the life of the process.
// The CLI falls back to it when no config directory can be created.
type ConfigStore struct {
	mu     sync.RWMutex
	values btree.Map[string, any]
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Get returns the raw value under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Get(key)
}

// GetString returns the value under key if it is a string.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetFloat returns the value under key as a float.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Set(key, value)
	return nil
}

// Delete removes key.
func (s *ConfigStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Delete(key)
	return nil
}

// Keys lists the stored keys in order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, s.values.Len())
	s.values.Scan(func(k string, _ any) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Path reports that nothing is written to disk.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
