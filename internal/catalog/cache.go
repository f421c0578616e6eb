package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/diewo77/invoice-editor/internal/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "catalog:products"

// RedisCache keeps the catalog snapshot in Redis as JSON. Concurrent misses
// share a single load from the underlying source. Redis errors are logged
// and the source answers instead.
type RedisCache struct {
	client *redis.Client
	src    Source
	ttl    time.Duration
	log    *logger.Logger
	group  singleflight.Group
}

// NewRedisCache wraps src. A nil client turns the cache into a pass-through.
func NewRedisCache(client *redis.Client, src Source, ttl time.Duration, log *logger.Logger) *RedisCache {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisCache{client: client, src: src, ttl: ttl, log: log}
}

// Products returns the cached snapshot, loading it on a miss.
func (c *RedisCache) Products(ctx context.Context) ([]Entry, error) {
	if c.client == nil {
		return c.src.Products(ctx)
	}
	payload, err := c.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var entries []Entry
		if err := json.Unmarshal(payload, &entries); err == nil {
			return entries, nil
		}
		c.log.Warn().Err(err).Str("key", cacheKey).Msg("discarding unreadable catalog cache")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Msg("catalog cache unavailable, reading source")
		return c.src.Products(ctx)
	}

	v, err, _ := c.group.Do(cacheKey, func() (any, error) {
		entries, err := c.src.Products(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Msg("catalog cache write failed")
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]Entry(nil), v.([]Entry)...), nil
}

// Invalidate drops the cached snapshot after the catalog changed.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey).Err()
}
