// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package testinfra

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/vidora/internal/platform/redis"
)

const (
	redisImage = "redis:7-alpine"
	redisPort  = "6379/tcp"
)

// StartRedis runs a fresh Redis container and returns a connected client.
// The container is terminated when the test ends.
func StartRedis(t *testing.T) *goredis.Client {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{redisPort},
			WaitingFor:   wait.ForListeningPort(redisPort).WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, redisPort)
	require.NoError(t, err)

	logger := Logger()
	client, err := redis.NewClient(ctx, redis.ClientConfig{URL: "redis://" + host + ":" + port.Port() + "/0"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}
