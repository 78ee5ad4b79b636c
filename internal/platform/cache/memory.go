// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process [Cache] backed by patrickmn/go-cache.
//
// go-cache runs a janitor goroutine for the life of the process; there is one
// MemoryCache per server, so it is never stopped.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a cache whose entries default to ttl and are purged
// every cleanupInterval.
func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false, nil
	}
	raw, ok := value.([]byte)
	return raw, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.store.Delete(key)
	}
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	// Add fails when the counter exists, which is the common case.
	_ = c.store.Add(key, int64(0), gocache.NoExpiration)
	return c.store.IncrementInt64(key, 1)
}

func (c *MemoryCache) Counter(_ context.Context, key string) (int64, error) {
	value, found := c.store.Get(key)
	if !found {
		return 0, nil
	}
	n, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("cache: %s is not a counter", key)
	}
	return n, nil
}
