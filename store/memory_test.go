package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_BasicOps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "a", []byte("alpha")))
	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)

	// Returned slice is a copy; mutating it must not affect the store.
	got[0] = 'X'
	got2, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got2)

	require.NoError(t, m.Put(ctx, "b", []byte("beta")))
	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, m.Delete(ctx, "a"))
	require.NoError(t, m.Delete(ctx, "a")) // idempotent
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Clear(ctx))
	keys, err = m.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
