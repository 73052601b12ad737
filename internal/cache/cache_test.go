package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchKey_NormalizesQuery(t *testing.T) {
	assert.Equal(t, "swap:search:3:bici", searchKey(3, "  BICI "))
	assert.Equal(t, "swap:search:0:", searchKey(0, ""))
	assert.NotEqual(t, searchKey(1, "bici"), searchKey(2, "bici"))
}

func TestNop(t *testing.T) {
	var c SearchCache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "bici", nil))
	products, gen, hit, err := c.Get(ctx, "bici")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, gen)
	assert.Nil(t, products)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestNewRedisSearchCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisSearchCache(ctx, &redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}, time.Minute)
	assert.Error(t, err)
}
