package tier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictionPolicy_Validate(t *testing.T) {
	for _, p := range []EvictionPolicy{PolicyLRU, PolicyLFU, PolicyTTL, PolicyPriority} {
		assert.NoError(t, p.Validate())
	}
	assert.Error(t, EvictionPolicy("random").Validate())
}

func TestEvictionOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*Entry[string]{
		{
			Key:          "a",
			Timestamp:    base,
			TTL:          time.Hour,
			Priority:     PriorityCritical,
			AccessCount:  10,
			LastAccessed: base.Add(30 * time.Minute),
		},
		{
			Key:          "b",
			Timestamp:    base,
			TTL:          time.Minute,
			Priority:     PriorityMedium,
			AccessCount:  3,
			LastAccessed: base.Add(time.Minute),
		},
		{
			Key:          "c",
			Timestamp:    base,
			TTL:          30 * time.Minute,
			Priority:     PriorityLow,
			AccessCount:  7,
			LastAccessed: base.Add(10 * time.Minute),
		},
	}

	tests := []struct {
		policy EvictionPolicy
		want   []string // keys in eviction order
	}{
		{PolicyLRU, []string{"b", "c", "a"}},
		{PolicyLFU, []string{"b", "c", "a"}},
		{PolicyTTL, []string{"b", "c", "a"}},
		{PolicyPriority, []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			ordered := EvictionOrder(entries, tt.policy)
			require.Len(t, ordered, len(tt.want))
			for i, key := range tt.want {
				assert.Equal(t, key, ordered[i].Key)
			}
		})
	}

	// Input order is preserved.
	assert.Equal(t, "a", entries[0].Key)
}

func TestEvictionOrder_TieBreakIsDeterministic(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*Entry[string]{
		{Key: "z", LastAccessed: ts},
		{Key: "a", LastAccessed: ts},
		{Key: "m", LastAccessed: ts},
	}

	ordered := EvictionOrder(entries, PolicyLRU)
	assert.Equal(t, "a", ordered[0].Key)
	assert.Equal(t, "m", ordered[1].Key)
	assert.Equal(t, "z", ordered[2].Key)
}
