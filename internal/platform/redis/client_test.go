// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vidora/internal/platform/redis"
)

func TestNewClient_RejectsBadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := redis.NewClient(context.Background(), redis.ClientConfig{URL: "http://not-redis"}, logger)

	assert.ErrorContains(t, err, "invalid URL")
}

func TestNewClient_FailsWhenUnreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := redis.NewClient(context.Background(), redis.ClientConfig{URL: "redis://127.0.0.1:1/0"}, logger)

	assert.ErrorContains(t, err, "ping failed")
}
