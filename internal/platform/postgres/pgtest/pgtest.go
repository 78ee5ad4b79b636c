// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package pgtest starts a disposable PostgreSQL for repository tests.

One container is shared by every test in a package; [New] migrates it once and
truncates the archive tables before handing the pool to the next test, so tests
must not call t.Parallel.

Tests are skipped with -short or when no Docker provider is reachable.
*/
package pgtest

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/pims-archive/pims/internal/platform/migration"
	"github.com/pims-archive/pims/internal/platform/postgres"
)

const image = "postgres:16-alpine"

var (
	once     sync.Once
	shared   *pgxpool.Pool
	dsn      string
	startErr error
)

// New returns a pool on a freshly truncated, fully migrated database.
func New(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("pgtest: skipping database test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(start)
	if startErr != nil {
		t.Fatalf("pgtest: start postgres: %v", startErr)
	}

	Reset(t, shared)
	return shared
}

// DSN returns the connection string of the shared database. Call [New] first.
func DSN() string {
	return dsn
}

// Reset empties every archive table and restarts the id sequences.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	const truncate = `
		TRUNCATE pims_entry_topic, pims_main_translations, pims_main,
		         topic_translations, topic, organizations, locations, languages
		RESTART IDENTITY CASCADE`

	if _, err := pool.Exec(context.Background(), truncate); err != nil {
		t.Fatalf("pgtest: truncate: %v", err)
	}
}

func start() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("pims"),
		tcpostgres.WithUsername("pims"),
		tcpostgres.WithPassword("pims"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		startErr = err
		return
	}

	dsn, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		startErr = err
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := migration.RunUp(dsn, "", logger); err != nil {
		startErr = err
		return
	}

	shared, startErr = postgres.NewPool(ctx, dsn, logger)
}
