package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	MarketID string `json:"market_id"`
	RoundID  int64  `json:"round_id"`
}

func TestRedisCache(t *testing.T) {
	s := miniredis.RunT(t)
	rc := NewRedisCache[snapshot](newTestRedisOptions(s.Addr()))
	defer rc.Close()
	ctx := context.Background()

	t.Run("round trip struct values", func(t *testing.T) {
		in := snapshot{MarketID: "wingame", RoundID: 1700000000000}
		require.NoError(t, rc.Set(ctx, "round:wingame", in, 0))

		out, err := rc.Get(ctx, "round:wingame")
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := rc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, rc.Set(ctx, "temp", snapshot{MarketID: "x"}, 50*time.Millisecond))
		s.FastForward(100 * time.Millisecond)
		_, err := rc.Get(ctx, "temp")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, rc.Set(ctx, "gone", snapshot{MarketID: "y"}, 0))
		require.NoError(t, rc.Delete(ctx, "gone"))
		_, err := rc.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		require.NoError(t, s.Set("test:bad", "{not json"))
		_, err := rc.Get(ctx, "bad")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("server down", func(t *testing.T) {
		s2 := miniredis.RunT(t)
		down := NewRedisCache[string](newTestRedisOptions(s2.Addr()))
		defer down.Close()
		s2.Close()

		_, err := down.Get(ctx, "k")
		assert.Error(t, err)
		assert.Error(t, down.Set(ctx, "k", "v", 0))
	})
}

func TestRedisCacheDefaultOpTimeout(t *testing.T) {
	s := miniredis.RunT(t)
	opts := newTestRedisOptions(s.Addr())
	opts.OpTimeout = 0

	rc := NewRedisCache[string](opts)
	defer rc.Close()

	assert.Equal(t, 50*time.Millisecond, rc.opTimeout)
	assert.NoError(t, rc.Set(context.Background(), "foo", "bar", 0))
}
