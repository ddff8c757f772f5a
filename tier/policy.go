package tier

import (
	"cmp"
	"fmt"
	"slices"
)

// EvictionPolicy selects the ordering used when a tier must shed entries.
type EvictionPolicy string

const (
	// PolicyLRU evicts the entry with the oldest LastAccessed first.
	PolicyLRU EvictionPolicy = "lru"
	// PolicyLFU evicts the entry with the lowest AccessCount first.
	PolicyLFU EvictionPolicy = "lfu"
	// PolicyTTL evicts the entry with the soonest expiry first.
	PolicyTTL EvictionPolicy = "ttl"
	// PolicyPriority evicts the entry with the lowest Priority first.
	PolicyPriority EvictionPolicy = "priority"
)

// Validate returns an error for unknown policies.
func (p EvictionPolicy) Validate() error {
	switch p {
	case PolicyLRU, PolicyLFU, PolicyTTL, PolicyPriority:
		return nil
	default:
		return fmt.Errorf("unknown eviction policy %q", string(p))
	}
}

// EvictionOrder returns the entries sorted into eviction order for the given
// policy: the entry at index 0 is removed first. The input slice is not
// modified.
//
// Entries that compare equal under the policy are ordered by key, so the
// eviction sequence is deterministic.
func EvictionOrder[V any](entries []*Entry[V], policy EvictionPolicy) []*Entry[V] {
	ordered := slices.Clone(entries)
	slices.SortFunc(ordered, func(a, b *Entry[V]) int {
		if c := comparePolicy(a, b, policy); c != 0 {
			return c
		}
		// Deterministic tie-break.
		return cmp.Compare(a.Key, b.Key)
	})
	return ordered
}

func comparePolicy[V any](a, b *Entry[V], policy EvictionPolicy) int {
	switch policy {
	case PolicyLFU:
		return cmp.Compare(a.AccessCount, b.AccessCount)
	case PolicyTTL:
		return a.ExpiresAt().Compare(b.ExpiresAt())
	case PolicyPriority:
		return cmp.Compare(a.Priority, b.Priority)
	default: // PolicyLRU
		return a.LastAccessed.Compare(b.LastAccessed)
	}
}
