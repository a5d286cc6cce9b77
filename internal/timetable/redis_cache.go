package timetable

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "od:timetable:"

// RedisCache shares load results between processes through Redis. Redis
// errors are logged and treated as cache misses.
type RedisCache struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (LoadResult, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("timetable cache read failed", "key", key, "error", err)
		}
		return LoadResult{}, false
	}
	var result LoadResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("timetable cache entry corrupt", "key", key, "error", err)
		return LoadResult{}, false
	}
	return result, true
}

func (c *RedisCache) Store(ctx context.Context, key string, result LoadResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("timetable cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		c.logger.Warn("timetable cache write failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("timetable cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("timetable cache invalidate failed", "error", err)
	}
}
