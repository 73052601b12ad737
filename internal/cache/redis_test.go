package cache

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// testRedisAddr пуст, если Docker недоступен
var testRedisAddr string

func TestMain(m *testing.M) {
	os.Exit(runWithRedis(m))
}

func runWithRedis(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("Docker недоступен, тесты Redis пропускаются: %v", err)
		return m.Run()
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("Не удалось запустить Redis: %v", err)
		return m.Run()
	}
	defer pool.Purge(resource)
	_ = resource.Expire(120)

	addr := resource.GetHostPort("6379/tcp")
	if err := pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	}); err != nil {
		log.Printf("Redis не отвечает: %v", err)
		return m.Run()
	}

	testRedisAddr = addr
	return m.Run()
}

func newTestRedisCache(t *testing.T, db int) *RedisSearchCache {
	t.Helper()
	if testRedisAddr == "" {
		t.Skip("Redis недоступен")
	}

	ctx := context.Background()
	c, err := NewRedisSearchCache(ctx, &redis.Options{Addr: testRedisAddr, DB: db}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.client.FlushDB(ctx).Err())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisSearchCache_RoundTrip(t *testing.T) {
	c := newTestRedisCache(t, 1)
	ctx := context.Background()

	_, gen, hit, err := c.Get(ctx, "Bici")
	require.NoError(t, err)
	assert.False(t, hit)

	products := []models.Product{{ID: uuid.New(), Name: "Bici", OwnerUsername: "ana"}}
	require.NoError(t, c.Set(ctx, gen, "Bici", products))

	cached, _, hit, err := c.Get(ctx, " bici ")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, cached, 1)
	assert.Equal(t, products[0].ID, cached[0].ID)

	require.NoError(t, c.Invalidate(ctx))
	_, newGen, hit, err := c.Get(ctx, "bici")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, gen+1, newGen)
}

func TestRedisSearchCache_SetAfterInvalidateIsNotServed(t *testing.T) {
	c := newTestRedisCache(t, 2)
	ctx := context.Background()

	// Поиск промахнулся и читает хранилище
	_, gen, hit, err := c.Get(ctx, "bici")
	require.NoError(t, err)
	require.False(t, hit)

	// Тем временем товар удален, кэш сброшен
	require.NoError(t, c.Invalidate(ctx))

	// Поиск сохраняет уже устаревшие строки
	stale := []models.Product{{ID: uuid.New(), Name: "Bici borrada"}}
	require.NoError(t, c.Set(ctx, gen, "bici", stale))

	cached, _, hit, err := c.Get(ctx, "bici")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, cached)
}
