// Package tier implements the storage tiers of the multi-tier cache: the
// entry container, the tier capability abstraction, eviction-order policies,
// and the memory- and store-backed tier implementations.
//
// Tiers are passive. They hold entries and declare their capacity, default
// TTL, and eviction policy; all orchestration (fallback order, promotion,
// access accounting, capacity enforcement) happens in the root package.
package tier

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key is not present in a tier.
var ErrNotFound = errors.New("tier: entry not found")

// CorruptEntryError indicates that stored bytes failed to decode. Callers
// treat it as a miss for that key/tier.
type CorruptEntryError struct {
	Tier string
	Key  string
	Err  error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("corrupt entry %q in tier %s: %v", e.Key, e.Tier, e.Err)
}

func (e *CorruptEntryError) Unwrap() error { return e.Err }

// Config declares the static properties of a tier.
type Config struct {
	Name       string
	MaxSize    int64
	DefaultTTL time.Duration
	Policy     EvictionPolicy
}

// Tier is the capability abstraction over one storage level.
// Implementations must be safe for concurrent use.
type Tier[V any] interface {
	// Name returns the tier's stable name.
	Name() string
	// Policy returns the declared eviction policy.
	Policy() EvictionPolicy
	// MaxSize returns the configured capacity in bytes.
	MaxSize() int64
	// DefaultTTL returns the TTL applied to entries written without one.
	DefaultTTL() time.Duration

	// Get returns the entry stored under key, or ErrNotFound.
	// Get does not mutate access statistics; that is the orchestrator's job.
	Get(ctx context.Context, key string) (*Entry[V], error)
	// Set stores the entry under its key, overwriting any previous value.
	Set(ctx context.Context, e *Entry[V]) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Keys returns every key currently resident.
	Keys(ctx context.Context) ([]string, error)
	// Entries returns a snapshot of every decodable resident entry.
	Entries(ctx context.Context) ([]*Entry[V], error)
	// Size recomputes the tier's byte footprint by summing resident entry
	// sizes. Never a running counter, so it cannot drift.
	Size(ctx context.Context) (int64, error)
}
