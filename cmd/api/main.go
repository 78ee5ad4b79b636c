// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Command api is the entry point for the PIMS archive HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Pick the dashboard cache: Redis when REDIS_URL is set, in-process otherwise.
//  5. Run database migrations when AUTO_MIGRATE is set.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/pims-archive/pims/internal/api"
	"github.com/pims-archive/pims/internal/auth"
	"github.com/pims-archive/pims/internal/core/entry"
	"github.com/pims-archive/pims/internal/core/insight"
	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/importer"
	"github.com/pims-archive/pims/internal/platform/cache"
	"github.com/pims-archive/pims/internal/platform/config"
	"github.com/pims-archive/pims/internal/platform/constants"
	"github.com/pims-archive/pims/internal/platform/metrics"
	"github.com/pims-archive/pims/internal/platform/middleware"
	"github.com/pims-archive/pims/internal/platform/migration"
	pgstore "github.com/pims-archive/pims/internal/platform/postgres"
	redisstore "github.com/pims-archive/pims/internal/platform/redis"
	"github.com/pims-archive/pims/internal/platform/sec"
	"github.com/pims-archive/pims/internal/setup"
)

// memoryCleanupInterval is how often the in-process cache drops expired views.
const memoryCleanupInterval = 5 * time.Minute

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[PIMS] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Dashboard Cache ────────────────────────────────────────────────
	var store cache.Cache
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		store = cache.NewRedisCache(rdb)
	} else {
		log.Info("redis_disabled", slog.String("cache", "memory"))
		store = cache.NewMemoryCache(cfg.CacheTTL, memoryCleanupInterval)
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	migrator := migration.Runner{DSN: cfg.DatabaseURL, Path: cfg.MigrationPath, Logger: log}
	if cfg.AutoMigrate {
		must(log, migrator.Up(), "run migrations")
	}

	// ── 6. Security & Metrics ─────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	accounts, err := auth.ParseAccounts(cfg.Accounts)
	must(log, err, "parse PIMS_ACCOUNTS")
	if len(accounts) == 0 {
		log.Warn("no_accounts_configured")
	}

	m, err := metrics.NewMetrics()
	must(log, err, "register metrics")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    store.Ping,
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	referenceRepository := reference.NewPostgresRepository(pool)
	referenceService := reference.NewService(referenceRepository)

	insightService := insight.NewService(insight.NewPostgresRepository(pool), store, cfg.CacheTTL, m, log)

	entryService := entry.NewService(entry.NewPostgresRepository(pool, referenceRepository), insightService, m, log)

	authService, err := auth.NewService(auth.NewStaticAccountStore(accounts), tokens, cfg.TokenTTL, log)
	must(log, err, "initialize auth service")

	setupService := setup.NewService(pool, migrator, insightService, log)

	importService := importer.NewService(importer.NewPostgresStore(pool, referenceRepository), insightService, m, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	must(log, err, "parse TRUSTED_PROXIES")

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	contributionLimiter := middleware.NewRateLimiter(constants.ContributionRPS, constants.ContributionBurst)
	go limiter.Cleanup(runCtx)
	go contributionLimiter.Cleanup(runCtx)

	server := api.NewServer(cfg, api.Dependencies{
		Logger:              log,
		Verifier:            tokens,
		Metrics:             m,
		TrustedProxies:      trustedProxies,
		Limiter:             limiter,
		ContributionLimiter: contributionLimiter,
	}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Reference: reference.NewHandler(referenceService),
		Entry:     entry.NewHandler(entryService, referenceService),
		Insight:   insight.NewHandler(insightService),
		Setup:     setup.NewHandler(setupService),
		Importer:  importer.NewHandler(importService),
	})

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "pims"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
