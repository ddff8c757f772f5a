package tier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"low", PriorityLow},
		{"medium", PriorityMedium},
		{"high", PriorityHigh},
		{"critical", PriorityCritical},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestEntry_ValidWindow(t *testing.T) {
	now := time.Now()
	e := &Entry[string]{
		Key:       "u:1",
		Data:      "x",
		Timestamp: now,
		TTL:       time.Minute,
	}

	assert.True(t, e.Valid(now))
	assert.True(t, e.Valid(now.Add(59*time.Second)))
	assert.False(t, e.Valid(now.Add(time.Minute)))
	assert.False(t, e.Valid(now.Add(time.Hour)))
	assert.Equal(t, now.Add(time.Minute), e.ExpiresAt())
}

func TestEntry_Touch(t *testing.T) {
	now := time.Now()
	e := &Entry[string]{Key: "u:1", AccessCount: 1, LastAccessed: now}

	later := now.Add(time.Second)
	e.Touch(later)
	assert.Equal(t, int64(2), e.AccessCount)
	assert.Equal(t, later, e.LastAccessed)
}

func TestEntry_CloneIsolatesSlices(t *testing.T) {
	e := &Entry[string]{
		Key:          "u:1",
		Tags:         []string{"a"},
		Dependencies: []string{"d"},
	}

	cp := e.Clone()
	cp.Tags[0] = "mutated"
	cp.Dependencies[0] = "mutated"

	assert.Equal(t, []string{"a"}, e.Tags)
	assert.Equal(t, []string{"d"}, e.Dependencies)
}
