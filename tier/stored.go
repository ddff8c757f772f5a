package tier

import (
	"context"
	"errors"
	"time"

	"github.com/devblac/sport-tracker-sub006/codec"
	"github.com/devblac/sport-tracker-sub006/store"
)

// Stored is a persistent tier layered over a keyed byte store. Entries are
// serialized with the configured codec; bytes that fail to decode surface as
// CorruptEntryError and are treated as misses upstream.
//
// Both the persistent-local tier (quota-enforcing filesystem store) and the
// persistent-shared tier (object or table store) are Stored tiers; only the
// backing KV differs.
type Stored[V any] struct {
	cfg Config
	kv  store.KV
	c   codec.Codec
}

// NewStored creates a tier over kv using c for serialization.
// If c is nil, codec.Default is used.
func NewStored[V any](cfg Config, kv store.KV, c codec.Codec) *Stored[V] {
	if c == nil {
		c = codec.Default
	}
	return &Stored[V]{cfg: cfg, kv: kv, c: c}
}

// Probe reports whether the backing store's platform capability is present.
// Stores without a Ping method are assumed available.
func Probe(ctx context.Context, kv store.KV) bool {
	p, ok := kv.(store.Pinger)
	if !ok {
		return true
	}
	return p.Ping(ctx) == nil
}

// Name returns the tier's stable name.
func (s *Stored[V]) Name() string { return s.cfg.Name }

// Policy returns the declared eviction policy.
func (s *Stored[V]) Policy() EvictionPolicy { return s.cfg.Policy }

// MaxSize returns the configured capacity in bytes.
func (s *Stored[V]) MaxSize() int64 { return s.cfg.MaxSize }

// DefaultTTL returns the TTL applied to entries written without one.
func (s *Stored[V]) DefaultTTL() time.Duration { return s.cfg.DefaultTTL }

// Get returns the entry stored under key.
func (s *Stored[V]) Get(ctx context.Context, key string) (*Entry[V], error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var e Entry[V]
	if err := s.c.Unmarshal(raw, &e); err != nil {
		return nil, &CorruptEntryError{Tier: s.cfg.Name, Key: key, Err: err}
	}
	return &e, nil
}

// Set serializes the entry and writes it to the backing store. Quota
// failures from the store pass through unwrapped so callers can react.
func (s *Stored[V]) Set(ctx context.Context, e *Entry[V]) error {
	raw, err := s.c.Marshal(e)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, e.Key, raw)
}

// Delete removes key.
func (s *Stored[V]) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

// Clear removes every entry.
func (s *Stored[V]) Clear(ctx context.Context) error {
	return s.kv.Clear(ctx)
}

// Keys returns every key currently resident.
func (s *Stored[V]) Keys(ctx context.Context) ([]string, error) {
	return s.kv.Keys(ctx)
}

// Entries returns a snapshot of every decodable resident entry.
// Corrupt or concurrently-deleted entries are skipped.
func (s *Stored[V]) Entries(ctx context.Context) ([]*Entry[V], error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry[V], 0, len(keys))
	for _, key := range keys {
		e, err := s.Get(ctx, key)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Size recomputes the byte footprint by summing resident entry sizes.
func (s *Stored[V]) Size(ctx context.Context) (int64, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}
