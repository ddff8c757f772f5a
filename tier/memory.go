package tier

import (
	"context"
	"sync"
	"time"
)

// Memory is the ephemeral tier: an in-process map of entries guarded by an
// RWMutex. It is always available and always the fastest tier.
type Memory[V any] struct {
	cfg     Config
	mu      sync.RWMutex
	entries map[string]*Entry[V]
}

// NewMemory creates the ephemeral tier with the given configuration.
func NewMemory[V any](cfg Config) *Memory[V] {
	return &Memory[V]{
		cfg:     cfg,
		entries: make(map[string]*Entry[V]),
	}
}

// Name returns the tier's stable name.
func (m *Memory[V]) Name() string { return m.cfg.Name }

// Policy returns the declared eviction policy.
func (m *Memory[V]) Policy() EvictionPolicy { return m.cfg.Policy }

// MaxSize returns the configured capacity in bytes.
func (m *Memory[V]) MaxSize() int64 { return m.cfg.MaxSize }

// DefaultTTL returns the TTL applied to entries written without one.
func (m *Memory[V]) DefaultTTL() time.Duration { return m.cfg.DefaultTTL }

// Get returns the entry stored under key.
// The returned entry is a copy; mutations do not land until a Set.
func (m *Memory[V]) Get(_ context.Context, key string) (*Entry[V], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

// Set stores a copy of the entry under its key.
func (m *Memory[V]) Set(_ context.Context, e *Entry[V]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[e.Key] = e.Clone()
	return nil
}

// Delete removes key.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Clear removes every entry.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry[V])
	return nil
}

// Keys returns every key currently resident.
func (m *Memory[V]) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Entries returns a snapshot of every resident entry.
func (m *Memory[V]) Entries(_ context.Context) ([]*Entry[V], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*Entry[V], 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e.Clone())
	}
	return entries, nil
}

// Size recomputes the byte footprint by summing resident entry sizes.
func (m *Memory[V]) Size(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, e := range m.entries {
		total += e.Size
	}
	return total, nil
}
