// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/metrics"
)

const countCacheBreaker = "count_cache"

var errCacheMiss = errors.New("social: count cache miss")

// Counter derives a count from the authoritative store. [EdgeStore] satisfies it.
type Counter interface {
	Count(context context.Context, kind Kind, targetID string) (int64, error)
}

// countBackend is the key/value surface the cache needs.
type countBackend interface {
	Get(context context.Context, key string) (int64, bool, error)
	Set(context context.Context, key string, value int64, ttl time.Duration) error
	// SetIfAbsent writes only when no value is held, so it never replaces a
	// fresher count written by Set.
	SetIfAbsent(context context.Context, key string, value int64, ttl time.Duration) error
}

// CountCache serves derived counts for read endpoints from Redis.
//
// The cache is never consulted by the [Engine]. Toggles push the fresh count
// through [CountCache.Observe]; every other value expires after the TTL. Redis
// failures trip a circuit breaker and reads fall through to the [Counter].
type CountCache struct {
	backend countBackend
	counter Counter
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[int64]
	logger  *slog.Logger
}

// NewCountCache builds a [CountCache] backed by a Redis client.
func NewCountCache(client *redis.Client, counter Counter, ttl time.Duration, logger *slog.Logger) *CountCache {
	return newCountCache(&redisCountBackend{client: client}, counter, ttl, logger)
}

func newCountCache(backend countBackend, counter Counter, ttl time.Duration, logger *slog.Logger) *CountCache {
	metrics.CircuitBreakerState.WithLabelValues(countCacheBreaker).Set(0)

	breaker := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        countCacheBreaker,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A miss is a healthy answer from Redis.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("social_count_cache_breaker_state",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &CountCache{backend: backend, counter: counter, ttl: ttl, breaker: breaker, logger: logger}
}

/*
Count returns the number of edges of kind pointing at targetID.

Description: Reads Redis through the breaker. A miss or any cache failure
falls back to the live count, which is written back on a best-effort basis
and only if no toggle stored a count in the meantime.

Returns:
  - int64: The count
  - error: Only failures of the authoritative store
*/
func (cache *CountCache) Count(context context.Context, kind Kind, targetID string) (int64, error) {
	key := countKey(kind, targetID)

	value, err := cache.breaker.Execute(func() (int64, error) {
		value, found, err := cache.backend.Get(context, key)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, errCacheMiss
		}
		return value, nil
	})

	switch {
	case err == nil:
		metrics.CountCacheRequests.WithLabelValues("hit").Inc()
		return value, nil
	case errors.Is(err, errCacheMiss):
		metrics.CountCacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.CountCacheRequests.WithLabelValues("error").Inc()
		cache.logger.DebugContext(context, "social_count_cache_read_failed", slog.Any("error", err))
	}

	count, err := cache.counter.Count(context, kind, targetID)
	if err != nil {
		return 0, err
	}

	cache.write(context, key, count, cache.backend.SetIfAbsent)
	return count, nil
}

// Observe records the count produced by a toggle, replacing any cached value.
func (cache *CountCache) Observe(context context.Context, kind Kind, targetID string, count int64) {
	cache.write(context, countKey(kind, targetID), count, cache.backend.Set)
}

type countWriter func(context context.Context, key string, value int64, ttl time.Duration) error

func (cache *CountCache) write(context context.Context, key string, count int64, set countWriter) {
	_, err := cache.breaker.Execute(func() (int64, error) {
		return count, set(context, key, count, cache.ttl)
	})
	if err != nil {
		cache.logger.DebugContext(context, "social_count_cache_write_failed", slog.Any("error", err))
	}
}

func countKey(kind Kind, targetID string) string {
	return constants.RedisPrefixCount + string(kind) + ":" + targetID
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

// # Redis Backend

type redisCountBackend struct {
	client *redis.Client
}

func (backend *redisCountBackend) Get(context context.Context, key string) (int64, bool, error) {
	raw, err := backend.client.Get(context, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis_count_get_failed: %w", err)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis_count_decode_failed: %w", err)
	}
	return value, true, nil
}

func (backend *redisCountBackend) Set(context context.Context, key string, value int64, ttl time.Duration) error {
	if err := backend.client.Set(context, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_count_set_failed: %w", err)
	}
	return nil
}

func (backend *redisCountBackend) SetIfAbsent(context context.Context, key string, value int64, ttl time.Duration) error {
	if err := backend.client.SetNX(context, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_count_setnx_failed: %w", err)
	}
	return nil
}
