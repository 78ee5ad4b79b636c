// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	pimsredis "github.com/pims-archive/pims/internal/platform/redis"
)

// RedisCache is a [Cache] shared by every API replica.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing client. The caller owns the client lifecycle.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get %s: %w", key, err)
	}
	return raw, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache: redis incr %s: %w", key, err)
	}
	return n, nil
}

func (c *RedisCache) Counter(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: redis get %s: %w", key, err)
	}
	return n, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if client, ok := c.client.(*redis.Client); ok {
		return pimsredis.Ping(ctx, client)
	}
	return c.client.Ping(ctx).Err()
}
