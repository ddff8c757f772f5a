package tiercache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/devblac/sport-tracker-sub006/codec"
	"github.com/devblac/sport-tracker-sub006/internal/tagindex"
	"github.com/devblac/sport-tracker-sub006/store"
	"github.com/devblac/sport-tracker-sub006/tier"
)

const (
	// promoteThreshold is the access count above which an entry is copied
	// into the ephemeral tier.
	promoteThreshold = 5

	// highWaterFraction triggers eviction; lowWaterFraction is the target.
	highWaterFraction = 0.8
	lowWaterFraction  = 0.7

	// fallbackEntrySize is assumed when the size estimator fails.
	fallbackEntrySize = 256

	// quotaCleanupFraction of resident entries (oldest by recency) removed
	// by an emergency cleanup after expired entries were not enough.
	quotaCleanupFraction = 0.2
)

// Manager orchestrates the storage tiers. Construct one per cache domain,
// inject it into consumers, and Shutdown it when done; there is no process
// singleton.
//
// All methods are safe for concurrent use. There is no global lock: tiers
// guard themselves and per-key consistency is last-write-wins.
type Manager[V any] struct {
	cfg       Config
	log       *Logger
	codec     codec.Codec
	estimator SizeEstimator[V]
	now       func() time.Time
	limiter   *rate.Limiter

	tiers   []tier.Tier[V] // fastest first
	metrics *metricsRegistry
	rules   *RuleEngine
	tags    *tagindex.Index

	closed atomic.Bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

// New constructs a Manager from the given configuration.
//
// The ephemeral tier is always active. The local tier activates when enabled;
// its backing store defaults to a quota-enforcing filesystem store under
// cfg.LocalDir. The shared tier activates only when enabled, a backend was
// injected via WithSharedStore, and the backend's capability probe passes —
// an absent capability silently omits the tier, it is not an error.
func New[V any](cfg Config, optFns ...Option[V]) (*Manager[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(optFns)

	m := &Manager[V]{
		cfg:       cfg,
		log:       o.logger,
		codec:     o.codec,
		estimator: o.estimator,
		now:       o.now,
		limiter:   o.prefetchLimiter,
		rules:     NewRuleEngine(),
		tags:      tagindex.New(),
		stop:      make(chan struct{}),
	}

	probeCtx := context.Background()

	m.tiers = append(m.tiers, tier.NewMemory[V](cfg.tierConfig(TierEphemeral, cfg.Ephemeral)))

	if cfg.Local.Enabled {
		kv := o.localStore
		if kv == nil {
			local, err := store.NewLocal(cfg.LocalDir, cfg.Local.MaxSize)
			if err != nil {
				return nil, fmt.Errorf("%w: local tier directory: %v", ErrInvalidConfig, err)
			}
			kv = local
		}
		if tier.Probe(probeCtx, kv) {
			m.tiers = append(m.tiers, tier.NewStored[V](cfg.tierConfig(TierLocal, cfg.Local), kv, o.codec))
		} else {
			m.log.Info("local tier unavailable, omitting", "tier", TierLocal)
		}
	}

	if cfg.Shared.Enabled && o.sharedStore != nil {
		if tier.Probe(probeCtx, o.sharedStore) {
			m.tiers = append(m.tiers, tier.NewStored[V](cfg.tierConfig(TierShared, cfg.Shared), o.sharedStore, o.codec))
		} else {
			m.log.Info("shared tier unavailable, omitting", "tier", TierShared)
		}
	}

	names := make([]string, len(m.tiers))
	for i, t := range m.tiers {
		names[i] = t.Name()
	}
	m.metrics = newMetricsRegistry(names)
	m.log.Info("cache manager started", "tiers", names)

	if cfg.OptimizationInterval > 0 {
		m.wg.Add(1)
		go m.optimizeLoop(cfg.OptimizationInterval)
	}

	return m, nil
}

// Rules returns the cascading-invalidation rule engine for registration.
func (m *Manager[V]) Rules() *RuleEngine { return m.rules }

// ActiveTiers returns the names of the active tiers, fastest first.
func (m *Manager[V]) ActiveTiers() []string {
	names := make([]string, len(m.tiers))
	for i, t := range m.tiers {
		names[i] = t.Name()
	}
	return names
}

// Clear wipes every tier and resets all metrics.
func (m *Manager[V]) Clear(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	for _, t := range m.tiers {
		if err := t.Clear(ctx); err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "clear", Err: err})
		}
	}
	m.tags.Clear()
	m.metrics.reset()
	return nil
}

// Shutdown stops the periodic optimize task, runs one final optimize pass,
// and marks the manager closed. Further operations return ErrClosed.
func (m *Manager[V]) Shutdown(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(m.stop)
	m.wg.Wait()
	m.runOptimize(ctx)
	m.log.Info("cache manager stopped")
	return nil
}

// tierByName resolves an active tier, or nil.
func (m *Manager[V]) tierByName(name string) tier.Tier[V] {
	for _, t := range m.tiers {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// targetTiers resolves the requested tier names to active tiers, defaulting
// to all active tiers. Unknown names are ignored.
func (m *Manager[V]) targetTiers(names []string) []tier.Tier[V] {
	if len(names) == 0 {
		return m.tiers
	}
	targets := make([]tier.Tier[V], 0, len(names))
	for _, name := range names {
		if t := m.tierByName(name); t != nil {
			targets = append(targets, t)
		}
	}
	return targets
}

// estimateSize runs the configured estimator, falling back to the encoded
// entry length and finally to a constant.
func (m *Manager[V]) estimateSize(v V) int64 {
	if m.estimator != nil {
		if n, err := m.estimator(v); err == nil && n >= 0 {
			return n
		}
		return fallbackEntrySize
	}
	raw, err := m.codec.Marshal(v)
	if err != nil {
		return fallbackEntrySize
	}
	return int64(len(raw))
}

// lookup probes tiers for a key without touching metrics or access stats.
// Returns the entry, the index of the tier that held it, or ErrNotFound.
func (m *Manager[V]) lookup(ctx context.Context, key string) (*tier.Entry[V], int, error) {
	now := m.now()
	for i, t := range m.tiers {
		e, err := t.Get(ctx, key)
		if err != nil {
			continue
		}
		if !e.Valid(now) {
			continue
		}
		return e, i, nil
	}
	return nil, -1, tier.ErrNotFound
}

func isQuotaErr(err error) bool {
	return errors.Is(err, store.ErrQuotaExceeded)
}
