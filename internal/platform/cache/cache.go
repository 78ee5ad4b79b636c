// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package cache stores serialized dashboard aggregates for a short time.

Two backends implement [Cache]:

  - [RedisCache]: shared between API replicas (REDIS_URL set).
  - [MemoryCache]: in-process, for a single instance or local development.

Values are opaque bytes; [Remember] handles the JSON encoding of typed results.
*/
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pims-archive/pims/internal/platform/ctxutil"
	"github.com/pims-archive/pims/internal/platform/metrics"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error

	// Incr atomically adds one to the counter at key, creating it at zero, and
	// returns the new value. Counters never expire.
	Incr(ctx context.Context, key string) (int64, error)
	// Counter returns the value of the counter at key, zero when absent.
	Counter(ctx context.Context, key string) (int64, error)
}

/*
Remember returns the cached value for key, or calls load and caches its result.

A cache that fails to answer never fails the request: the lookup is counted as an
error and the loader result is served. Loader errors are returned as-is and
nothing is stored.

Parameters:
  - ctx: context.Context
  - store: Cache
  - m: *metrics.Metrics (may be nil)
  - key: string
  - ttl: time.Duration
  - load: func(context.Context) (T, error)

Returns:
  - T: the cached or freshly loaded value
  - error: the loader failure, if any
*/
func Remember[T any](ctx context.Context, store Cache, m *metrics.Metrics, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	logger := ctxutil.GetLogger(ctx)

	raw, hit, err := store.Get(ctx, key)
	switch {
	case err != nil:
		m.CacheLookup("error")
		logger.WarnContext(ctx, "cache_get_failed", slog.String("key", key), slog.Any("error", err))

	case hit:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			m.CacheLookup("hit")
			return cached, nil
		}
		m.CacheLookup("error")

	default:
		m.CacheLookup("miss")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		logger.WarnContext(ctx, "cache_encode_failed", slog.String("key", key), slog.Any("error", err))
		return value, nil
	}

	if err := store.Set(ctx, key, encoded, ttl); err != nil {
		logger.WarnContext(ctx, "cache_set_failed", slog.String("key", key), slog.Any("error", err))
	}

	return value, nil
}
