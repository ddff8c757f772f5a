package tier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblac/sport-tracker-sub006/store"
)

func newStoredTier(t *testing.T) (*Stored[string], *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	s := NewStored[string](Config{
		Name:       "local",
		MaxSize:    1 << 20,
		DefaultTTL: time.Minute,
		Policy:     PolicyLRU,
	}, kv, nil)
	return s, kv
}

func TestStored_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStoredTier(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &Entry[string]{
		Key:          "workout:42",
		Data:         "5x5 squats",
		Timestamp:    now,
		TTL:          time.Minute,
		Tags:         []string{"workouts"},
		Priority:     PriorityHigh,
		AccessCount:  1,
		LastAccessed: now,
		Size:         10,
		Version:      1,
		Dependencies: []string{"user:7"},
	}
	require.NoError(t, s.Set(ctx, in))

	out, err := s.Get(ctx, "workout:42")
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, in.Tags, out.Tags)
	assert.Equal(t, in.Priority, out.Priority)
	assert.Equal(t, in.Dependencies, out.Dependencies)
	assert.True(t, in.Timestamp.Equal(out.Timestamp))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStored_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, kv := newStoredTier(t)

	require.NoError(t, kv.Put(ctx, "bad", []byte("{not json")))

	_, err := s.Get(ctx, "bad")
	var corrupt *CorruptEntryError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "local", corrupt.Tier)
	assert.Equal(t, "bad", corrupt.Key)
}

func TestStored_EntriesSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	s, kv := newStoredTier(t)

	require.NoError(t, s.Set(ctx, &Entry[string]{Key: "good", Data: "v", TTL: time.Minute, Size: 5}))
	require.NoError(t, kv.Put(ctx, "bad", []byte("garbage")))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "good", entries[0].Key)

	size, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	// Plain stores have no capability to probe.
	assert.True(t, Probe(ctx, store.NewMemory()))

	assert.True(t, Probe(ctx, pingable{err: nil}))
	assert.False(t, Probe(ctx, pingable{err: assert.AnError}))
}

type pingable struct {
	*store.Memory
	err error
}

func (p pingable) Ping(context.Context) error { return p.err }
