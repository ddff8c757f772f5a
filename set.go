package tiercache

import (
	"context"
	"time"

	"github.com/devblac/sport-tracker-sub006/tier"
)

type setOptions struct {
	ttl          time.Duration
	priority     tier.Priority
	tags         []string
	dependencies []string
	targets      []string
}

// SetOption configures a single Set call.
type SetOption func(*setOptions)

// WithTTL overrides the tier default TTL for this entry.
func WithTTL(d time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = d
	}
}

// WithPriority sets the entry priority. Default is PriorityMedium.
// Priority drives tier selection and priority-based eviction.
func WithPriority(p tier.Priority) SetOption {
	return func(o *setOptions) {
		o.priority = p
	}
}

// WithTags labels the entry for group invalidation.
func WithTags(tags ...string) SetOption {
	return func(o *setOptions) {
		o.tags = append(o.tags, tags...)
	}
}

// WithDependencies declares key prefixes whose invalidation cascades to this
// entry.
func WithDependencies(deps ...string) SetOption {
	return func(o *setOptions) {
		o.dependencies = append(o.dependencies, deps...)
	}
}

// ToTiers writes only to the named tiers, overriding priority-based
// selection. Unknown or inactive tier names are ignored.
func ToTiers(names ...string) SetOption {
	return func(o *setOptions) {
		o.targets = append(o.targets, names...)
	}
}

// Set builds a fresh entry and writes it to the selected tiers.
//
// Selection: explicit ToTiers if given; otherwise the ephemeral tier always,
// the local tier unless the priority is low, and the shared tier only for
// high or critical priorities.
//
// Writes are independent: a failure on one tier is recovered (quota failures
// trigger an emergency cleanup and one retry) and never aborts the others.
// After writing, capacity enforcement runs on every touched tier.
func (m *Manager[V]) Set(ctx context.Context, key string, data V, optFns ...SetOption) error {
	if m.closed.Load() {
		return ErrClosed
	}
	o := setOptions{priority: tier.PriorityMedium}
	for _, fn := range optFns {
		fn(&o)
	}

	now := m.now()
	version := int64(1)
	if prev, _, err := m.lookup(ctx, key); err == nil {
		version = prev.Version + 1
	}

	entry := tier.Entry[V]{
		Key:          key,
		Data:         data,
		Timestamp:    now,
		TTL:          o.ttl,
		Tags:         o.tags,
		Priority:     o.priority,
		AccessCount:  1,
		LastAccessed: now,
		Size:         m.estimateSize(data),
		Version:      version,
		Dependencies: o.dependencies,
	}

	targets := m.selectTiers(o)
	written := make([]string, 0, len(targets))
	failed := 0
	for _, t := range targets {
		e := entry.Clone()
		if e.TTL <= 0 {
			e.TTL = t.DefaultTTL()
		}
		if err := m.writeTier(ctx, t, e); err != nil {
			failed++
			continue
		}
		m.metrics.tier(t.Name()).sets.Add(1)
		written = append(written, t.Name())
	}

	if len(written) > 0 {
		// Replaces the key's previous tag set; a write without tags
		// unlinks any earlier associations.
		m.tags.Set(key, o.tags)
	}

	for _, t := range targets {
		m.enforceCapacity(ctx, t)
	}

	m.log.LogSet(ctx, key, written, failed)
	return nil
}

// selectTiers resolves the write set for one Set call.
func (m *Manager[V]) selectTiers(o setOptions) []tier.Tier[V] {
	if len(o.targets) > 0 {
		return m.targetTiers(o.targets)
	}
	targets := []tier.Tier[V]{m.tiers[0]}
	if t := m.tierByName(TierLocal); t != nil && o.priority != tier.PriorityLow {
		targets = append(targets, t)
	}
	if t := m.tierByName(TierShared); t != nil && o.priority >= tier.PriorityHigh {
		targets = append(targets, t)
	}
	return targets
}

// writeTier writes one entry to one tier, recovering quota failures with an
// emergency cleanup and a single retry.
func (m *Manager[V]) writeTier(ctx context.Context, t tier.Tier[V], e *tier.Entry[V]) error {
	err := t.Set(ctx, e)
	if err == nil {
		return nil
	}
	if !isQuotaErr(err) {
		m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "set", Key: e.Key, Err: err})
		return err
	}

	removed := m.emergencyCleanup(ctx, t)
	retryErr := t.Set(ctx, e)
	m.log.LogQuotaCleanup(ctx, t.Name(), removed, retryErr == nil)
	if retryErr != nil {
		m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "set", Key: e.Key, Err: retryErr})
		return retryErr
	}
	return nil
}

// emergencyCleanup frees space on a quota-constrained tier: expired entries
// first, then the oldest fifth of the remainder by recency.
func (m *Manager[V]) emergencyCleanup(ctx context.Context, t tier.Tier[V]) int {
	entries, err := t.Entries(ctx)
	if err != nil {
		m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "entries", Err: err})
		return 0
	}
	met := m.metrics.tier(t.Name())
	now := m.now()
	removed := 0

	live := entries[:0]
	for _, e := range entries {
		if e.Valid(now) {
			live = append(live, e)
			continue
		}
		if err := t.Delete(ctx, e.Key); err == nil {
			met.expirations.Add(1)
			removed++
		}
	}

	byRecency := tier.EvictionOrder(live, tier.PolicyLRU)
	oldest := int(float64(len(byRecency)) * quotaCleanupFraction)
	if oldest == 0 && len(byRecency) > 0 {
		oldest = 1
	}
	for _, e := range byRecency[:oldest] {
		if err := t.Delete(ctx, e.Key); err == nil {
			met.evictions.Add(1)
			removed++
		}
	}
	return removed
}
