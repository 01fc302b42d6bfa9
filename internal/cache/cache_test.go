package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	t.Run("miss", func(t *testing.T) {
		_, err := c.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "copy", []byte("abc"), 0))
		got, _ := c.Get(ctx, "copy")
		got[0] = 'z'
		again, _ := c.Get(ctx, "copy")
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "exp", []byte("v"), time.Minute))
		now = now.Add(2 * time.Minute)
		_, err := c.Get(ctx, "exp")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("delete and close", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "d", []byte("v"), 0))
		require.NoError(t, c.Delete(ctx, "d"))
		_, err := c.Get(ctx, "d")
		assert.ErrorIs(t, err, ErrMiss)

		require.NoError(t, c.Set(ctx, "e", []byte("v"), 0))
		require.NoError(t, c.Close())
		_, err = c.Get(ctx, "e")
		assert.ErrorIs(t, err, ErrMiss)
	})
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
