// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package setup brings an empty PostgreSQL database to a usable archive.

Initialization has two steps:

 1. Schema: pending golang-migrate migrations are applied.
 2. Seed: when pims_main is empty, the reference rows and sample entries are
    inserted in a single transaction.

Both steps are idempotent, so the action can be repeated safely.
*/
package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pims-archive/pims/data"
	"github.com/pims-archive/pims/internal/platform/database/schema"
	"github.com/pims-archive/pims/internal/platform/dberr"
	"github.com/pims-archive/pims/internal/platform/migration"
	"github.com/pims-archive/pims/internal/platform/postgres"
)

// Migrator applies and reports schema migrations. [migration.Runner] implements it.
type Migrator interface {
	Up() error
	Status() (migration.Status, error)
}

// Invalidator drops cached dashboard views after seeding.
type Invalidator interface {
	Invalidate(context context.Context) error
}

// Status describes how far the database has been initialized.
type Status struct {
	Initialized bool `json:"initialized"`
	Version     uint `json:"version"`
	Dirty       bool `json:"dirty"`
	Entries     int  `json:"entries"`
}

// Result is the outcome of [Service.Initialize].
type Result struct {
	Seeded  bool   `json:"seeded"`
	Message string `json:"message"`
	Status  Status `json:"status"`
}

// Messages reported by [Service.Initialize].
const (
	MessageSeeded             = "Database initialized"
	MessageAlreadyInitialized = "Database already initialized"
)

// Service runs the setup action.
type Service struct {
	db          *pgxpool.Pool
	migrator    Migrator
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService constructs a new setup [Service]. invalidator may be nil.
func NewService(db *pgxpool.Pool, migrator Migrator, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, migrator: migrator, invalidator: invalidator, logger: logger}
}

// Status reports the schema version and the number of stored entries. A
// database without tables reports zero entries rather than an error.
func (service *Service) Status(context context.Context) (Status, error) {
	applied, err := service.migrator.Status()
	if err != nil {
		return Status{}, err
	}

	status := Status{
		Initialized: applied.Applied && !applied.Dirty,
		Version:     applied.Version,
		Dirty:       applied.Dirty,
	}
	if !status.Initialized {
		return status, nil
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.PimsMain.Table)
	if err := service.db.QueryRow(context, query).Scan(&status.Entries); err != nil {
		if dberr.IsUndefinedTable(err) {
			status.Initialized = false
			return status, nil
		}
		return Status{}, dberr.Wrap(err, "setup_status")
	}

	return status, nil
}

/*
Initialize applies pending migrations and seeds an empty archive.

Returns:
  - Result: Seeded is false when entries already existed
  - error: Migration or seed failures (nothing is seeded on error)
*/
func (service *Service) Initialize(context context.Context) (Result, error) {
	if err := service.migrator.Up(); err != nil {
		service.logger.ErrorContext(context, "setup_migration_failed", slog.Any("error", err))
		return Result{}, err
	}

	seeded, err := service.Seed(context)
	if err != nil {
		return Result{}, err
	}

	status, err := service.Status(context)
	if err != nil {
		return Result{}, err
	}

	result := Result{Seeded: seeded, Message: MessageAlreadyInitialized, Status: status}
	if seeded {
		result.Message = MessageSeeded
	}
	return result, nil
}

/*
Seed inserts the sample data when pims_main is empty.

The table is locked for the duration of the transaction so two concurrent
setup calls cannot both see an empty archive.
*/
func (service *Service) Seed(context context.Context) (bool, error) {
	seeded := false

	err := postgres.WithTx(context, service.db, func(transaction pgx.Tx) error {
		lock := fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", schema.PimsMain.Table)
		if _, err := transaction.Exec(context, lock); err != nil {
			return dberr.Wrap(err, "seed_lock")
		}

		var existing bool
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", schema.PimsMain.Table)
		if err := transaction.QueryRow(context, query).Scan(&existing); err != nil {
			return dberr.Wrap(err, "seed_check")
		}
		if existing {
			return nil
		}

		if _, err := transaction.Exec(context, data.SeedSQL); err != nil {
			return dberr.Wrap(err, "seed_insert")
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		service.logger.InfoContext(context, "setup_seeded")
		if service.invalidator != nil {
			if err := service.invalidator.Invalidate(context); err != nil {
				service.logger.WarnContext(context, "dashboard_invalidate_failed", slog.Any("error", err))
			}
		}
	}
	return seeded, nil
}
