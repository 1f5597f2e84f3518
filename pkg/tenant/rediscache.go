package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces tenant cache keys in a shared Redis.
const DefaultRedisKeyPrefix = "tenant_engine:tenant:"

// RedisCache is a Cache backed by Redis. It lets multiple processes share
// one tenant cache so a lifecycle change invalidated on one instance becomes
// invisible on all of them at once.
//
// Read and write failures degrade to cache misses: a broken Redis must slow
// resolution down, never break it.
type RedisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithRedisKeyPrefix overrides the key prefix used for cache entries.
func WithRedisKeyPrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// NewRedisCache creates a Redis-backed tenant cache.
func NewRedisCache(client redis.UniversalClient, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client:    client,
		keyPrefix: DefaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(payload, &t); err != nil {
		// Corrupted entry: drop it so the next request repopulates.
		_ = c.client.Del(ctx, c.keyPrefix+key).Err()
		return nil, false
	}

	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	payload, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, c.keyPrefix+key).Err()
}

// Close is a no-op: the Redis client is owned by the caller.
func (c *RedisCache) Close() error { return nil }
