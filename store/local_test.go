package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_BasicOps(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "workout:1", []byte("squats")))
	got, err := s.Get(ctx, "workout:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("squats"), got)
	assert.Equal(t, int64(6), s.Used())

	// Overwrite replaces the accounted size, not adds to it.
	require.NoError(t, s.Put(ctx, "workout:1", []byte("deadlifts")))
	assert.Equal(t, int64(9), s.Used())

	require.NoError(t, s.Delete(ctx, "workout:1"))
	assert.Equal(t, int64(0), s.Used())
	_, err = s.Get(ctx, "workout:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_KeysSurviveArbitraryStrings(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	weird := []string{"a/b/../c", "user:1:prs", "..", "with space", "emoji💪"}
	for _, k := range weird {
		require.NoError(t, s.Put(ctx, k, []byte(k)))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, weird, keys)
}

func TestLocal_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), 10)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("12345678")))
	err = s.Put(ctx, "b", []byte("123"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Freeing space makes the write succeed.
	require.NoError(t, s.Delete(ctx, "a"))
	assert.NoError(t, s.Put(ctx, "b", []byte("123")))
}

func TestLocal_RebuildsAccountingOnReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewLocal(dir, 1024)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "a", []byte("alpha")))
	require.NoError(t, s.Put(ctx, "b", []byte("beta")))

	reopened, err := NewLocal(dir, 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(9), reopened.Used())

	keys, err := reopened.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	got, err := reopened.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
}

func TestLocal_Clear(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("alpha")))
	require.NoError(t, s.Put(ctx, "b", []byte("beta")))
	require.NoError(t, s.Clear(ctx))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, int64(0), s.Used())
}

func TestLocal_ClearFailureKeepsAccountingConsistent(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("alpha")))
	require.NoError(t, s.Put(ctx, "b", []byte("beta")))

	// Make "a" unremovable by replacing its file with a non-empty
	// directory, so Clear fails partway through.
	blocked := s.path("a")
	require.NoError(t, os.Remove(blocked))
	require.NoError(t, os.Mkdir(blocked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocked, "child"), []byte("x"), 0o644))

	require.Error(t, s.Clear(ctx))

	// Usage must track exactly the entries still accounted, whichever
	// subset the failed pass removed.
	s.mu.Lock()
	var want int64
	for _, n := range s.sizes {
		want += n
	}
	s.mu.Unlock()
	assert.Equal(t, want, s.Used())

	// Once the blocker is gone, Clear drains the rest to zero.
	require.NoError(t, os.RemoveAll(blocked))
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, int64(0), s.Used())
}
