package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pk-mender/desafiojr/internal/postcode"
	"github.com/pk-mender/desafiojr/internal/postcode/metrics"
)

const redisKeyPrefix = "postcode:address:"

// RedisCache persists addresses in Redis with TTL-based eviction, so lookups
// survive restarts and are shared between replicas.
type RedisCache struct {
	client   redis.Cmdable
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewRedisCache constructs a Redis-backed postcode cache. metrics may be nil.
func NewRedisCache(client redis.Cmdable, cacheTTL time.Duration, metrics *metrics.Metrics) *RedisCache {
	return &RedisCache{
		client:   client,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// Find loads a cached address.
//
// Errors: ErrNotFound on a miss; wraps Redis or JSON decode errors.
func (c *RedisCache) Find(ctx context.Context, digits string) (postcode.Address, error) {
	data, err := c.client.Get(ctx, redisKey(digits)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.recordMiss()
			return postcode.Address{}, ErrNotFound
		}
		return postcode.Address{}, fmt.Errorf("find postcode cache: %w", err)
	}

	var address postcode.Address
	if err := json.Unmarshal(data, &address); err != nil {
		return postcode.Address{}, fmt.Errorf("decode postcode cache: %w", err)
	}
	c.recordHit()
	return address, nil
}

// Save writes an address with TTL eviction, overwriting any existing entry.
func (c *RedisCache) Save(ctx context.Context, digits string, address postcode.Address) error {
	payload, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("encode postcode cache: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(digits), payload, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("save postcode cache: %w", err)
	}
	return nil
}

func (c *RedisCache) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordCacheHit(BackendRedis)
	}
}

func (c *RedisCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(BackendRedis)
	}
}

func redisKey(digits string) string {
	return redisKeyPrefix + digits
}
