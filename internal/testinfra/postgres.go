// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

/*
Package testinfra starts disposable PostgreSQL containers for integration tests.

Tests using it carry the `integration` build tag and skip when Docker is unavailable:

	go test -tags integration ./...
*/
package testinfra

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/vidora/internal/platform/migration"
	"github.com/taibuivan/vidora/internal/platform/postgres"
)

const postgresImage = "postgres:16-alpine"

// SkipIfNoDocker skips the test when the Docker daemon is unreachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// PostgresDSN runs a fresh, empty PostgreSQL container and returns its DSN.
// The container is terminated when the test ends.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("vidora"),
		tcpostgres.WithUsername("vidora"),
		tcpostgres.WithPassword("vidora"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// StartPostgres runs a fresh PostgreSQL container, applies every migration
// and returns a pool.
func StartPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := PostgresDSN(t)
	logger := Logger()
	require.NoError(t, migration.RunUp(dsn, MigrationsDir(), logger, false))

	pool, err := postgres.NewPool(context.Background(), postgres.PoolConfig{DSN: dsn, MaxConns: 10}, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SeedAccount inserts a live account and returns its ID.
func SeedAccount(t *testing.T, pool *pgxpool.Pool, username string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users.account (id, username, email, passwordhash, displayname)
		 VALUES ($1, $2, $3, 'x', $2)`,
		id, username, username+"@example.com",
	)
	require.NoError(t, err)
	return id
}

// SeedVideo inserts a video owned by ownerID and returns its ID.
func SeedVideo(t *testing.T, pool *pgxpool.Pool, ownerID string, published bool) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO media.video (id, ownerid, title, videourl, ispublished)
		 VALUES ($1, $2, 'Test video', 'https://cdn.example.com/v.mp4', $3)`,
		id, ownerID, published,
	)
	require.NoError(t, err)
	return id
}

// MigrationsDir returns the absolute path of the repository's migrations directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
