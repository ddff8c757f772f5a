// Package store provides the keyed byte stores that back the persistent
// cache tiers.
//
// Stores are dumb: they move opaque bytes and report well-known failure
// modes. Entry semantics (TTL, priority, eviction) live a layer up in the
// tier package.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist.
//
// Implementations must return an error that satisfies
// `errors.Is(err, ErrNotFound)`.
var ErrNotFound = errors.New("store: key not found")

// ErrQuotaExceeded is returned by quota-enforcing stores when a write would
// exceed the configured byte budget.
var ErrQuotaExceeded = errors.New("store: quota exceeded")

// KV is an abstraction over a keyed byte store.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes data under key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every key currently present.
	Keys(ctx context.Context) ([]string, error)
	// Clear removes every key.
	Clear(ctx context.Context) error
}

// Pinger is an optional interface for stores whose availability depends on a
// platform capability. Ping is probed once at cache construction; a failing
// probe omits the tier from the active set.
type Pinger interface {
	Ping(ctx context.Context) error
}
