package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestDedupe(t *testing.T, ttl time.Duration) (*DedupeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDedupeCache(client, ttl), mr
}

func TestDedupeCacheMarkIfNew(t *testing.T) {
	ctx := context.Background()

	t.Run("first sighting is new, repeat is suppressed", func(t *testing.T) {
		cache, _ := newTestDedupe(t, time.Hour)

		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
		assert.False(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
	})

	t.Run("different users and findings do not collide", func(t *testing.T) {
		cache, _ := newTestDedupe(t, time.Hour)

		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
		assert.True(t, cache.MarkIfNew(ctx, "user-2", "bucket-a", "Public bucket"))
		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-b", "Public bucket"))
		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "No encryption"))
	})

	t.Run("suppression expires with the TTL", func(t *testing.T) {
		cache, mr := newTestDedupe(t, time.Minute)

		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
		mr.FastForward(2 * time.Minute)
		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
	})

	t.Run("redis failure fails open", func(t *testing.T) {
		cache, mr := newTestDedupe(t, time.Hour)
		mr.Close()

		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
	})

	t.Run("nil cache never suppresses", func(t *testing.T) {
		var cache *DedupeCache
		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
		assert.True(t, cache.MarkIfNew(ctx, "user-1", "bucket-a", "Public bucket"))
	})
}

func TestNewDedupeCacheDisabled(t *testing.T) {
	assert.Nil(t, NewDedupeCache(nil, time.Hour))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	assert.Nil(t, NewDedupeCache(client, 0))
}
