package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/ports"
)

func TestLocalCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Hour, 0, zap.NewNop())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "emb:m:1", []byte("[1,2]"), time.Minute))
	val, err := c.Get(ctx, "emb:m:1")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", val)

	require.NoError(t, c.Set(ctx, "obj", map[string]int{"adet": 2}, 0))
	val, err = c.Get(ctx, "obj")
	require.NoError(t, err)
	assert.JSONEq(t, `{"adet":2}`, val)

	require.NoError(t, c.Delete(ctx, "emb:m:1"))
	_, err = c.Get(ctx, "emb:m:1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestLocalCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Hour, 0, zap.NewNop())
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestLocalCache_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Hour, 2, zap.NewNop())
	defer c.Close()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, k, 0))
	}

	assert.Equal(t, 2, c.Len())
	val, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "c", val)
}

func TestLocalCache_CloseIsIdempotent(t *testing.T) {
	c := NewLocalCache(time.Millisecond, 0, zap.NewNop())

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Ping())
}

func TestNew_FallsBackToLocal(t *testing.T) {
	c := New("", "pos:", zap.NewNop())
	defer c.Close()

	_, ok := c.(*LocalCache)
	assert.True(t, ok)
}
