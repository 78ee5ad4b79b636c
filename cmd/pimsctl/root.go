// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package main

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pims-archive/pims/internal/platform/config"
	"github.com/pims-archive/pims/internal/platform/migration"
	"github.com/pims-archive/pims/internal/platform/postgres"
)

// env is the state shared by subcommands that talk to the database.
type env struct {
	debug  bool
	logger *slog.Logger
	cfg    *config.DatabaseConfig
}

// connect opens a pool on DATABASE_URL. The caller closes it.
func (e *env) connect(cmd *cobra.Command) (*pgxpool.Pool, error) {
	return postgres.NewPool(cmd.Context(), e.cfg.DatabaseURL, e.logger)
}

func (e *env) migrator() migration.Runner {
	return migration.Runner{DSN: e.cfg.DatabaseURL, Path: e.cfg.MigrationPath, Logger: e.logger}
}

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:          "pimsctl",
		Short:        "PIMS archive administration",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&e.debug, "debug", "d", false, "Enable debug output")

	passwordCmd := hashPasswordCommand()

	rootCmd.AddCommand(
		migrateCommand(e),
		seedCommand(e),
		importCommand(e),
		passwordCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if e.debug {
			level = slog.LevelDebug
		}
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		// Hashing a password needs no database
		if cmd.Name() == passwordCmd.Name() {
			return nil
		}

		cfg, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}

	return rootCmd
}
