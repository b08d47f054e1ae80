// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis builds the shared go-redis client.

Two components use it: refresh sessions when SESSION_STORE=redis, and the
derived-count read cache of the social graph. Neither is authoritative for
counts, so a Redis outage degrades reads to PostgreSQL instead of failing them.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidora/internal/platform/constants"
)

const (
	defaultPoolSize = 10
	dialTimeout     = 3 * time.Second
	ioTimeout       = 500 * time.Millisecond
	pingTimeout     = 2 * time.Second
)

// ClientConfig describes the Redis endpoint and pool size.
type ClientConfig struct {
	URL string

	// PoolSize caps open connections. Zero selects the default.
	PoolSize int
}

// NewClient parses the URL, applies timeouts and pings the server.
//
// Read and write timeouts are short: callers fall back to PostgreSQL, so a
// slow Redis must fail fast instead of holding the request.
func NewClient(context stdctx.Context, cfg ClientConfig, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.ClientName = constants.AppName
	options.PoolSize = cfg.PoolSize
	if options.PoolSize <= 0 {
		options.PoolSize = defaultPoolSize
	}
	options.MinIdleConns = max(1, options.PoolSize/5)
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis server answers within a short deadline.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
