//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/redis"
)

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis(t *testing.T) {
	t.Parallel()

	client := newTestRedisClient(t)
	c := cache.NewRedis[cache.Page](client, nil, cache.WithPrefix("test-pages"), cache.WithRedisDefaultTTL(time.Minute))
	ctx := context.Background()
	t.Cleanup(func() { _ = c.Clear(ctx) })

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	news := cache.PageKey("GET", "/news")
	about := cache.PageKey("GET", "/about")
	require.NoError(t, c.Set(ctx, news, cache.Page{Status: 200, Body: []byte("news")}, 0))
	require.NoError(t, c.Set(ctx, news+"/first", cache.Page{Status: 200, Body: []byte("first")}, -1))
	require.NoError(t, c.Set(ctx, about, cache.Page{Status: 200, Body: []byte("about")}, time.Minute))

	p, err := c.Get(ctx, news)
	require.NoError(t, err)
	require.Equal(t, []byte("news"), p.Body)

	require.NoError(t, c.DeletePrefix(ctx, news))
	_, err = c.Get(ctx, news+"/first")
	require.ErrorIs(t, err, cache.ErrNotFound)

	_, err = c.Get(ctx, about)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, about))
	_, err = c.Get(ctx, about)
	require.ErrorIs(t, err, cache.ErrNotFound)
	require.NoError(t, c.Close())
}
