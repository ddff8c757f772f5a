package tier

import (
	"fmt"
	"time"
)

// Priority orders entries for tier selection and priority-based eviction.
// Higher priorities reach more durable tiers and are evicted last.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// ParsePriority parses a priority name ("low", "medium", "high", "critical").
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Entry is the value-plus-metadata container stored in a tier.
//
// Entries are serialized as-is by the persistent tiers, so every field is
// exported. Data is opaque to the cache; Size is whatever the configured
// estimator reported at write time.
type Entry[V any] struct {
	Key          string        `json:"key"`
	Data         V             `json:"data"`
	Timestamp    time.Time     `json:"timestamp"`
	TTL          time.Duration `json:"ttl"`
	Tags         []string      `json:"tags,omitempty"`
	Priority     Priority      `json:"priority"`
	AccessCount  int64         `json:"access_count"`
	LastAccessed time.Time     `json:"last_accessed"`
	Size         int64         `json:"size"`
	Version      int64         `json:"version"`
	Dependencies []string      `json:"dependencies,omitempty"`
}

// Valid reports whether the entry is still live at the given instant.
// An entry is valid iff now − Timestamp < TTL.
func (e *Entry[V]) Valid(now time.Time) bool {
	return now.Sub(e.Timestamp) < e.TTL
}

// ExpiresAt returns the instant the entry becomes invalid.
func (e *Entry[V]) ExpiresAt() time.Time {
	return e.Timestamp.Add(e.TTL)
}

// Touch records a successful hit at the given instant.
func (e *Entry[V]) Touch(now time.Time) {
	e.AccessCount++
	e.LastAccessed = now
}

// Clone returns a copy with its own slice headers. Data is copied shallowly;
// callers must treat stored values as immutable.
func (e *Entry[V]) Clone() *Entry[V] {
	cp := *e
	if e.Tags != nil {
		cp.Tags = append([]string(nil), e.Tags...)
	}
	if e.Dependencies != nil {
		cp.Dependencies = append([]string(nil), e.Dependencies...)
	}
	return &cp
}
