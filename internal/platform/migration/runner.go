// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package migration provides a thin wrapper around golang-migrate for
// running database schema migrations.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. It enforces schema
// idempotency during application startup and backs the setup action and the
// pimsctl migrate commands. Migrations come from the binary (embedded with
// [data.Migrations]) unless a filesystem path is configured.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/pims-archive/pims/data"
)

// Status describes the schema version recorded by golang-migrate.
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	// Applied is false while no migration has ever run.
	Applied bool `json:"applied"`
}

// RunUp applies all pending UP migrations.
//
// # Parameters
//   - dsn: A libpq-compatible DSN or postgres:// URL.
//   - migrationsPath: Filesystem path to the migrations directory, empty for the embedded set.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := open(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}

	if isDirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
	}

	logger.Info("migration_started", slog.Int("current_version", int(currentVersion)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)

	return nil
}

// RunDown rolls back steps migrations. A non-positive steps value rolls back everything.
func RunDown(dsn string, migrationsPath string, steps int, logger *slog.Logger) error {
	migrator, err := open(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if steps > 0 {
		err = migrator.Steps(-steps)
	} else {
		err = migrator.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: down failed: %w", err)
	}

	logger.Info("migration_rolled_back", slog.Int("steps", steps))
	return nil
}

// CurrentStatus reports the applied schema version without changing anything.
func CurrentStatus(dsn string, migrationsPath string, logger *slog.Logger) (Status, error) {
	migrator, err := open(dsn, migrationsPath, logger)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrator(migrator, logger)

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("migration: failed to get current version: %w", err)
	}

	return Status{Version: version, Dirty: dirty, Applied: true}, nil
}

// open builds a migrator over the embedded or on-disk migrations.
func open(dsn string, migrationsPath string, logger *slog.Logger) (*migrate.Migrate, error) {
	// golang-migrate pgx/v5 driver expects "pgx5://" scheme.
	databaseURL := convertToPgx5DSN(dsn)

	var (
		migrator *migrate.Migrate
		err      error
	)

	if migrationsPath == "" {
		source, srcErr := iofs.New(data.Migrations, data.MigrationsDir)
		if srcErr != nil {
			return nil, fmt.Errorf("migration: failed to open embedded migrations: %w", srcErr)
		}
		migrator, err = migrate.NewWithSourceInstance("iofs", source, databaseURL)
	} else {
		migrator, err = migrate.New("file://"+migrationsPath, databaseURL)
	}

	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	// Enable verbose logging via the slog bridge.
	migrator.Log = &migrateLogger{logger: logger}
	return migrator, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceError, dbError := migrator.Close()
	if sourceError != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
	}
	if dbError != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbError))
	}
}

// convertToPgx5DSN ensures the DSN uses the pgx5:// scheme required by golang-migrate/v4.
func convertToPgx5DSN(dsn string) string {
	const pgx5Prefix = "pgx5://"

	if strings.HasPrefix(dsn, pgx5Prefix) {
		return dsn
	}

	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return pgx5Prefix + rest
		}
	}

	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.verbose
}

// Runner binds a database and a migration source for repeated use.
type Runner struct {
	DSN    string
	Path   string
	Logger *slog.Logger
}

// Up applies all pending migrations.
func (r Runner) Up() error { return RunUp(r.DSN, r.Path, r.logger()) }

// Down rolls back steps migrations, or all of them when steps is not positive.
func (r Runner) Down(steps int) error { return RunDown(r.DSN, r.Path, steps, r.logger()) }

// Status reports the applied version.
func (r Runner) Status() (Status, error) { return CurrentStatus(r.DSN, r.Path, r.logger()) }

func (r Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
