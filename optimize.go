package tiercache

import (
	"context"
	"time"

	"github.com/devblac/sport-tracker-sub006/tier"
)

// Optimize runs one maintenance pass on demand: sweep expired entries, evict
// over-budget tiers down to the low-water mark, promote hot entries into the
// ephemeral tier, and refresh the size gauges. The same pass runs
// periodically when Config.OptimizationInterval is set.
func (m *Manager[V]) Optimize(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.runOptimize(ctx)
	return nil
}

// optimizeLoop drives the periodic pass. It may race with caller-issued
// operations; that is safe because eviction recomputes sizes from the live
// key set, so a concurrent Set simply survives the sweep.
func (m *Manager[V]) optimizeLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.runOptimize(context.Background())
		}
	}
}

func (m *Manager[V]) runOptimize(ctx context.Context) {
	expired := m.sweepExpired(ctx)
	evicted := 0
	for _, t := range m.tiers {
		high := int64(float64(t.MaxSize()) * highWaterFraction)
		size, err := t.Size(ctx)
		if err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "size", Err: err})
			continue
		}
		if size > high {
			evicted += m.evictDownTo(ctx, t, int64(float64(t.MaxSize())*lowWaterFraction))
		}
	}
	promoted := m.promoteHot(ctx)
	m.refreshGauges(ctx)
	m.log.LogOptimize(ctx, expired, evicted, promoted)
}

// sweepExpired removes every expired entry from every tier.
func (m *Manager[V]) sweepExpired(ctx context.Context) int {
	now := m.now()
	total := 0
	for _, t := range m.tiers {
		entries, err := t.Entries(ctx)
		if err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "entries", Err: err})
			continue
		}
		met := m.metrics.tier(t.Name())
		for _, e := range entries {
			if e.Valid(now) {
				continue
			}
			if err := t.Delete(ctx, e.Key); err != nil {
				m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "delete", Key: e.Key, Err: err})
				continue
			}
			met.expirations.Add(1)
			total++
		}
	}
	return total
}

// evictDownTo removes entries in the tier's policy order until the recomputed
// size reaches the target. Slight overshoot is acceptable; the last removed
// entry may be larger than the remaining excess.
func (m *Manager[V]) evictDownTo(ctx context.Context, t tier.Tier[V], target int64) int {
	entries, err := t.Entries(ctx)
	if err != nil {
		m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "entries", Err: err})
		return 0
	}

	var size int64
	for _, e := range entries {
		size += e.Size
	}

	met := m.metrics.tier(t.Name())
	evicted := 0
	for _, e := range tier.EvictionOrder(entries, t.Policy()) {
		if size <= target {
			break
		}
		if err := t.Delete(ctx, e.Key); err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "delete", Key: e.Key, Err: err})
			continue
		}
		size -= e.Size
		met.evictions.Add(1)
		evicted++
	}
	return evicted
}

// enforceCapacity is the post-write check: a tier pushed past its declared
// capacity is evicted down to the low-water mark immediately rather than
// waiting for the next periodic pass.
func (m *Manager[V]) enforceCapacity(ctx context.Context, t tier.Tier[V]) {
	size, err := t.Size(ctx)
	if err != nil {
		m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "size", Err: err})
		return
	}
	if size > t.MaxSize() {
		m.evictDownTo(ctx, t, int64(float64(t.MaxSize())*lowWaterFraction))
	}
}

// promoteHot copies entries whose access count exceeds the promotion
// threshold from the slower tiers into the ephemeral tier.
func (m *Manager[V]) promoteHot(ctx context.Context) int {
	if len(m.tiers) < 2 {
		return 0
	}
	now := m.now()
	promoted := 0
	for _, t := range m.tiers[1:] {
		entries, err := t.Entries(ctx)
		if err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "entries", Err: err})
			continue
		}
		for _, e := range entries {
			if e.AccessCount <= promoteThreshold || !e.Valid(now) {
				continue
			}
			if _, err := m.tiers[0].Get(ctx, e.Key); err == nil {
				continue
			}
			if err := m.tiers[0].Set(ctx, e); err != nil {
				m.log.LogTierError(ctx, &StorageOpError{Tier: m.tiers[0].Name(), Op: "set", Key: e.Key, Err: err})
				continue
			}
			promoted++
		}
	}
	return promoted
}

// refreshGauges recomputes the per-tier size and entry-count gauges.
func (m *Manager[V]) refreshGauges(ctx context.Context) {
	for _, t := range m.tiers {
		met := m.metrics.tier(t.Name())
		if size, err := t.Size(ctx); err == nil {
			met.sizeBytes.Store(size)
		}
		if keys, err := t.Keys(ctx); err == nil {
			met.entryCount.Store(int64(len(keys)))
		}
	}
}
