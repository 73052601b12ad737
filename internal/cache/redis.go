package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

const (
	generationKey = "swap:search:gen"
	keyPrefix     = "swap:search:"
)

// RedisSearchCache хранит результаты поиска в Redis. Инвалидация увеличивает
// номер поколения, старые ключи истекают по TTL.
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSearchCache подключается к Redis и проверяет соединение
func NewRedisSearchCache(ctx context.Context, opts *redis.Options, ttl time.Duration) (*RedisSearchCache, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}
	return &RedisSearchCache{client: client, ttl: ttl}, nil
}

func searchKey(generation int64, query string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, generation, strings.ToLower(strings.TrimSpace(query)))
}

func (c *RedisSearchCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisSearchCache) Get(ctx context.Context, query string) ([]models.Product, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, searchKey(gen, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil // Промах кэша
	}
	if err != nil {
		return nil, gen, false, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, gen, false, err
	}
	return products, gen, true, nil
}

// Set не перечитывает поколение: результаты, прочитанные до сброса кэша,
// не должны попасть в новое поколение.
func (c *RedisSearchCache) Set(ctx context.Context, gen int64, query string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(gen, query), data, c.ttl).Err()
}

func (c *RedisSearchCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

// Close закрывает соединение с Redis
func (c *RedisSearchCache) Close() error {
	return c.client.Close()
}
