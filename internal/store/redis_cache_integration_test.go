//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

// liveLink returns a link that is still valid by the wall clock, which the cache TTL follows.
func liveLink(code, url string) *shortener.ShortLink {
	link := newLink(code, url)
	link.CreatedAt = time.Unix(time.Now().Unix(), 0)
	link.ExpiresAt = link.CreatedAt.Add(time.Hour)

	return link
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	t.Run("serves cached link after first read", func(t *testing.T) {
		backing := store.NewMemoryStore()
		repo := store.NewRedisCacheRepository(backing, client, time.Minute)
		link := liveLink("rcache1", "https://example.com/cached")

		require.NoError(t, repo.Save(ctx, link))

		got, err := repo.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)

		cached, err := client.HGetAll(ctx, "link:rcache1").Result()
		require.NoError(t, err)
		assert.Equal(t, link.OriginalURL, cached["original_url"])

		ttl, err := client.TTL(ctx, "link:rcache1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))

		client.Del(ctx, "link:rcache1")
	})

	t.Run("save does not populate cache", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		require.NoError(t, repo.Save(ctx, newLink("rcache2", "https://example.com")))

		n, err := client.Exists(ctx, "link:rcache2").Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("cached link keeps timestamps", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)
		link := liveLink("rcache3", "https://example.com")
		require.NoError(t, repo.Save(ctx, link))

		_, err := repo.GetByCode(ctx, link.Code)
		require.NoError(t, err)

		got, err := repo.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, link.CreatedAt.Unix(), got.CreatedAt.Unix())
		assert.Equal(t, link.ExpiresAt.Unix(), got.ExpiresAt.Unix())

		client.Del(ctx, "link:rcache3")
	})

	t.Run("expired link is served but not cached", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)
		link := newLink("rcache4", "https://example.com")
		require.NoError(t, repo.Save(ctx, link))

		got, err := repo.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)

		n, err := client.Exists(ctx, "link:rcache4").Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ttl never outlives the link", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Hour)
		link := liveLink("rcache5", "https://example.com")
		link.ExpiresAt = time.Now().Add(10 * time.Minute)
		require.NoError(t, repo.Save(ctx, link))

		_, err := repo.GetByCode(ctx, link.Code)
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, "link:rcache5").Result()
		require.NoError(t, err)
		assert.LessOrEqual(t, ttl, 10*time.Minute)

		client.Del(ctx, "link:rcache5")
	})

	t.Run("missing code returns ErrNotFound", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		got, err := repo.GetByCode(ctx, "rcachenone")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
