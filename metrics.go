package tiercache

import (
	"sync"
	"sync/atomic"
)

// tierMetrics holds the per-tier counters. All fields are atomics so the hot
// paths never contend on the registry lock.
type tierMetrics struct {
	hits        atomic.Int64
	misses      atomic.Int64
	sets        atomic.Int64
	deletes     atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64

	// Gauges refreshed by the optimize pass.
	sizeBytes  atomic.Int64
	entryCount atomic.Int64
}

// TierMetricsSnapshot is a point-in-time copy of one tier's counters.
type TierMetricsSnapshot struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Deletes     int64
	Evictions   int64
	Expirations int64
	SizeBytes   int64
	EntryCount  int64
}

// HitRate returns hits / (hits + misses), or 0 when the tier is untouched.
func (s TierMetricsSnapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// metricsRegistry tracks counters for every active tier.
type metricsRegistry struct {
	mu    sync.RWMutex
	tiers map[string]*tierMetrics
}

func newMetricsRegistry(tierNames []string) *metricsRegistry {
	r := &metricsRegistry{tiers: make(map[string]*tierMetrics, len(tierNames))}
	for _, name := range tierNames {
		r.tiers[name] = &tierMetrics{}
	}
	return r
}

func (r *metricsRegistry) tier(name string) *tierMetrics {
	r.mu.RLock()
	m := r.tiers[name]
	r.mu.RUnlock()
	if m != nil {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m = r.tiers[name]; m == nil {
		m = &tierMetrics{}
		r.tiers[name] = m
	}
	return m
}

func (r *metricsRegistry) snapshot() map[string]TierMetricsSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]TierMetricsSnapshot, len(r.tiers))
	for name, m := range r.tiers {
		out[name] = TierMetricsSnapshot{
			Hits:        m.hits.Load(),
			Misses:      m.misses.Load(),
			Sets:        m.sets.Load(),
			Deletes:     m.deletes.Load(),
			Evictions:   m.evictions.Load(),
			Expirations: m.expirations.Load(),
			SizeBytes:   m.sizeBytes.Load(),
			EntryCount:  m.entryCount.Load(),
		}
	}
	return out
}

func (r *metricsRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.tiers {
		r.tiers[name] = &tierMetrics{}
	}
}
