package tiercache

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is issued after Shutdown.
	ErrClosed = errors.New("tiercache: manager is closed")

	// ErrInvalidPattern is returned for malformed invalidation patterns.
	ErrInvalidPattern = errors.New("tiercache: invalid pattern")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("tiercache: invalid config")
)

// StorageOpError describes a failed operation against a single tier.
//
// These never escape the public API: a failing tier is logged and treated as
// a miss (reads) or a no-op (writes) for that tier only. The type exists so
// logs and tests can tell tiers apart.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageOpError struct {
	Tier string
	Op   string
	Key  string
	Err  error
}

func (e *StorageOpError) Error() string {
	return fmt.Sprintf("tier %s: %s %q failed: %v", e.Tier, e.Op, e.Key, e.Err)
}

func (e *StorageOpError) Unwrap() error { return e.Err }
