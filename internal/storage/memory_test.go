package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()

	require.NoError(t, st.Set(ctx, "key", "value", 0))

	val, err := st.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	require.NoError(t, st.Delete(ctx, "key"))
	_, err = st.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStorageMissingKey(t *testing.T) {
	st := NewMemoryStorage()

	_, err := st.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStorageTTL(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()

	require.NoError(t, st.Set(ctx, "key", "value", 10*time.Millisecond))

	val, err := st.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	time.Sleep(20 * time.Millisecond)
	_, err = st.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
