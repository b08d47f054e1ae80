// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Vidora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Wire repositories, services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidora/internal/api"
	"github.com/taibuivan/vidora/internal/dashboard"
	"github.com/taibuivan/vidora/internal/media"
	"github.com/taibuivan/vidora/internal/platform/config"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/metrics"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	"github.com/taibuivan/vidora/internal/platform/migration"
	pgstore "github.com/taibuivan/vidora/internal/platform/postgres"
	redisstore "github.com/taibuivan/vidora/internal/platform/redis"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/social"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/internal/users/channel"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_store", cfg.SessionStore),
	)

	// Bounded so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, pgstore.PoolConfig{DSN: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, redisstore.ClientConfig{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log, cfg.Debug), "run migrations")

	// ── 5. Identity ───────────────────────────────────────────────────────
	signer, err := sec.NewTokenSignerFromFiles(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token signer")

	users := auth.NewUserRepository(pool)
	tokens := auth.NewTokenService(signer, sessionStore(cfg, pool, rdb), users, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log)
	resolver := auth.NewResolver(tokens, users)
	authService := auth.NewService(users, tokens, log)

	requireAuth := middleware.RequireAuth(resolver)
	optionalAuth := middleware.OptionalAuth(resolver)

	// ── 6. Social Graph ───────────────────────────────────────────────────
	channelRepository := channel.NewRepository(pool)
	mediaRepository := media.NewRepository(pool)

	targets := media.Targets(mediaRepository)
	targets[social.KindSubscription] = social.CheckerFunc(channelRepository.Exists)

	edges := social.NewEdgeStore(pool)
	counts := social.NewCountCache(rdb, edges, cfg.CountCacheTTL, log)
	engine := social.NewEngine(edges, targets, counts, log)
	socialService := social.NewService(edges, counts, targets, channelRepository, mediaRepository)

	// ── 7. Read Models ────────────────────────────────────────────────────
	channelService := channel.NewService(channelRepository, socialService, tokens, log)
	mediaService := media.NewService(mediaRepository, socialService, channelService)
	dashboardService := dashboard.NewService(mediaRepository, socialService)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(context context.Context) error {
			return pgstore.Ping(context, pool)
		},
		CheckCache: func(context context.Context) error {
			return redisstore.Ping(context, rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(),
		Auth: auth.NewHandler(authService, requireAuth,
			middleware.AuthRateLimit(cfg.AuthRateLimit, constants.AuthRateLimitWindow),
			auth.CookieOptions{Secure: cfg.CookieSecure},
		),
		Channel:   channel.NewHandler(channelService, optionalAuth, requireAuth),
		Social:    social.NewHandler(engine, socialService, requireAuth),
		Media:     media.NewHandler(mediaService, optionalAuth),
		Dashboard: dashboard.NewHandler(dashboardService, requireAuth),
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		return
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "vidora"))
	slog.SetDefault(log)
	return log
}

// sessionStore picks the refresh session backend named by SESSION_STORE.
func sessionStore(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) auth.SessionStore {
	if cfg.SessionStore == config.SessionStoreRedis {
		return auth.NewRedisSessionStore(rdb)
	}
	return auth.NewSessionStore(pool)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
