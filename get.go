package tiercache

import (
	"context"
	"errors"

	"github.com/devblac/sport-tracker-sub006/tier"
)

type getOptions struct {
	skipTiers map[string]bool
	skipStats bool
}

// GetOption configures a single Get call.
type GetOption func(*getOptions)

// SkipTiers excludes the named tiers from the probe order.
func SkipTiers(names ...string) GetOption {
	return func(o *getOptions) {
		if o.skipTiers == nil {
			o.skipTiers = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.skipTiers[n] = true
		}
	}
}

// WithoutAccessStats disables the access-count bump on a hit.
func WithoutAccessStats() GetOption {
	return func(o *getOptions) {
		o.skipStats = true
	}
}

// Get probes the active tiers fastest-first and returns the first valid
// entry's value. Tier-level failures degrade to a miss for that tier and the
// probe continues; the caller never sees them.
//
// On a hit, unless disabled, the entry's access statistics are bumped and
// persisted back to the originating tier, and the entry is considered for
// promotion into the ephemeral tier.
//
// The second return is false on a full cross-tier miss (including after
// Shutdown): the caller recomputes or refetches.
func (m *Manager[V]) Get(ctx context.Context, key string, optFns ...GetOption) (V, bool) {
	var zero V
	if m.closed.Load() {
		return zero, false
	}
	var o getOptions
	for _, fn := range optFns {
		fn(&o)
	}

	now := m.now()
	for i, t := range m.tiers {
		if o.skipTiers[t.Name()] {
			continue
		}
		met := m.metrics.tier(t.Name())

		e, err := t.Get(ctx, key)
		if err != nil {
			met.misses.Add(1)
			m.missByError(ctx, t, key, err)
			continue
		}
		if !e.Valid(now) {
			// Lazy expiry: drop the stale copy where we found it.
			met.misses.Add(1)
			met.expirations.Add(1)
			if derr := t.Delete(ctx, key); derr != nil {
				m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "delete", Key: key, Err: derr})
			}
			continue
		}

		met.hits.Add(1)
		if !o.skipStats {
			e.Touch(now)
			if serr := t.Set(ctx, e); serr != nil {
				m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "set", Key: key, Err: serr})
			}
		}
		if i > 0 && e.AccessCount > promoteThreshold {
			m.promote(ctx, e)
		}
		return e.Data, true
	}

	// Full cross-tier miss: skipped tiers still count toward the aggregate.
	for _, t := range m.tiers {
		if o.skipTiers[t.Name()] {
			m.metrics.tier(t.Name()).misses.Add(1)
		}
	}
	return zero, false
}

// missByError logs a tier failure that degraded to a miss. Corrupt entries
// are additionally deleted so the bad bytes are not decoded again.
func (m *Manager[V]) missByError(ctx context.Context, t tier.Tier[V], key string, err error) {
	if errors.Is(err, tier.ErrNotFound) {
		return
	}
	var corrupt *tier.CorruptEntryError
	if errors.As(err, &corrupt) {
		m.log.WarnContext(ctx, "corrupt entry treated as miss", "tier", t.Name(), "key", key, "error", corrupt.Err)
		if derr := t.Delete(ctx, key); derr != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "delete", Key: key, Err: derr})
		}
		return
	}
	m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "get", Key: key, Err: err})
}

// promote copies a hot entry into the ephemeral tier (write-through; the
// source tier keeps its copy). An existing ephemeral copy is left alone.
func (m *Manager[V]) promote(ctx context.Context, e *tier.Entry[V]) {
	fastest := m.tiers[0]
	if _, err := fastest.Get(ctx, e.Key); err == nil {
		return
	}
	if err := fastest.Set(ctx, e); err != nil {
		m.log.LogTierError(ctx, &StorageOpError{Tier: fastest.Name(), Op: "set", Key: e.Key, Err: err})
		return
	}
	m.metrics.tier(fastest.Name()).sets.Add(1)
	m.log.DebugContext(ctx, "promoted entry", "key", e.Key, "access_count", e.AccessCount)
}
