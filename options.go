package tiercache

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/devblac/sport-tracker-sub006/codec"
	"github.com/devblac/sport-tracker-sub006/store"
)

// SizeEstimator reports the approximate byte footprint of a value.
// It must be pure and synchronous; a failure falls back to a constant.
type SizeEstimator[V any] func(v V) (int64, error)

type options[V any] struct {
	logger          *Logger
	codec           codec.Codec
	estimator       SizeEstimator[V]
	now             func() time.Time
	localStore      store.KV
	sharedStore     store.KV
	prefetchLimiter *rate.Limiter
}

// Option configures Manager construction.
type Option[V any] func(*options[V])

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger[V any](logger *Logger) Option[V] {
	return func(o *options[V]) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel[V any](level slog.Level) Option[V] {
	return func(o *options[V]) {
		o.logger = NewTextLogger(level)
	}
}

// WithCodec configures the codec used by the persistent tiers.
//
// If nil is passed, codec.Default is used.
func WithCodec[V any](c codec.Codec) Option[V] {
	return func(o *options[V]) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithSizeEstimator configures the byte-footprint estimator for values.
// Without one, the size of the codec-encoded entry is used, falling back to
// a fixed constant when encoding fails.
func WithSizeEstimator[V any](fn SizeEstimator[V]) Option[V] {
	return func(o *options[V]) {
		o.estimator = fn
	}
}

// WithNow overrides the clock. Intended for tests.
func WithNow[V any](now func() time.Time) Option[V] {
	return func(o *options[V]) {
		o.now = now
	}
}

// WithLocalStore replaces the default filesystem store backing the
// persistent-local tier. Useful for tests and platforms with their own
// durable keyed storage.
func WithLocalStore[V any](kv store.KV) Option[V] {
	return func(o *options[V]) {
		o.localStore = kv
	}
}

// WithSharedStore wires the backend for the persistent-shared tier (e.g. a
// MinIO bucket or DynamoDB table). The tier only activates when the config
// enables it AND the store's capability probe passes at construction.
func WithSharedStore[V any](kv store.KV) Option[V] {
	return func(o *options[V]) {
		o.sharedStore = kv
	}
}

// WithPrefetchLimiter rate-limits loader invocations during Prefetch,
// protecting the backend the loader talks to. Pass nil for no limit.
func WithPrefetchLimiter[V any](l *rate.Limiter) Option[V] {
	return func(o *options[V]) {
		o.prefetchLimiter = l
	}
}

func applyOptions[V any](optFns []Option[V]) options[V] {
	o := options[V]{
		logger: NoopLogger(),
		codec:  codec.Default,
		now:    time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
