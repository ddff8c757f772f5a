package tiercache

import (
	"context"
	"strings"

	"github.com/devblac/sport-tracker-sub006/tier"
)

type invalidateOptions struct {
	byTags  []string
	cascade bool
	targets []string
}

// InvalidateOption configures a single Invalidate call.
type InvalidateOption func(*invalidateOptions)

// ByTags additionally selects every key whose tag set intersects the given
// tags.
func ByTags(tags ...string) InvalidateOption {
	return func(o *invalidateOptions) {
		o.byTags = append(o.byTags, tags...)
	}
}

// WithCascade resolves the configured rules against the collected keys and
// extends the removal to their dependents.
func WithCascade() InvalidateOption {
	return func(o *invalidateOptions) {
		o.cascade = true
	}
}

// InTiers restricts deletion to the named tiers. Default is every active
// tier.
func InTiers(names ...string) InvalidateOption {
	return func(o *invalidateOptions) {
		o.targets = append(o.targets, names...)
	}
}

// Invalidate removes every key selected by the matcher or the tag option
// from the target tiers, optionally cascading through the rule engine.
// Invalidating absent keys is a no-op, so the operation is idempotent.
func (m *Manager[V]) Invalidate(ctx context.Context, matcher Matcher, optFns ...InvalidateOption) error {
	if m.closed.Load() {
		return ErrClosed
	}
	var o invalidateOptions
	for _, fn := range optFns {
		fn(&o)
	}
	targets := m.targetTiers(o.targets)

	doomed := make(map[string]struct{})

	// Direct matches across the target tiers.
	for _, t := range targets {
		keys, err := t.Keys(ctx)
		if err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "keys", Err: err})
			continue
		}
		for _, k := range keys {
			if matcher.Match(k) {
				doomed[k] = struct{}{}
			}
		}
	}

	// Tag matches come from the index, not a tier walk.
	for _, k := range m.tags.KeysForTags(o.byTags) {
		doomed[k] = struct{}{}
	}

	if o.cascade && len(doomed) > 0 {
		m.cascade(ctx, doomed)
	}

	removed := 0
	for k := range doomed {
		for _, t := range targets {
			if err := t.Delete(ctx, k); err != nil {
				m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "delete", Key: k, Err: err})
				continue
			}
			m.metrics.tier(t.Name()).deletes.Add(1)
		}
		m.tags.Remove(k)
		removed++
	}

	m.log.LogInvalidate(ctx, removed, o.cascade)
	return nil
}

// cascade grows the doomed set: rule dependencies of every doomed key select
// further keys by prefix, and entries that declared a doomed key (or its
// prefix) as a dependency are doomed too. Candidates come from every active
// tier regardless of the deletion targets.
func (m *Manager[V]) cascade(ctx context.Context, doomed map[string]struct{}) {
	roots := make([]string, 0, len(doomed))
	for k := range doomed {
		roots = append(roots, k)
	}

	var prefixes []string
	for _, k := range roots {
		prefixes = append(prefixes, m.rules.DependenciesFor(k)...)
	}

	for _, t := range m.tiers {
		if len(prefixes) > 0 {
			keys, err := t.Keys(ctx)
			if err != nil {
				m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "keys", Err: err})
			} else {
				for _, k := range keys {
					for _, p := range prefixes {
						if strings.HasPrefix(k, p) {
							doomed[k] = struct{}{}
							break
						}
					}
				}
			}
		}

		entries, err := t.Entries(ctx)
		if err != nil {
			m.log.LogTierError(ctx, &StorageOpError{Tier: t.Name(), Op: "entries", Err: err})
			continue
		}
		for _, e := range entries {
			if dependsOnAny(e, roots) {
				doomed[e.Key] = struct{}{}
			}
		}
	}
}

// dependsOnAny reports whether one of the entry's declared dependency
// prefixes covers any of the root keys.
func dependsOnAny[V any](e *tier.Entry[V], roots []string) bool {
	for _, dep := range e.Dependencies {
		for _, root := range roots {
			if strings.HasPrefix(root, dep) {
				return true
			}
		}
	}
	return false
}
