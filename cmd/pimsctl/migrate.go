// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func migrateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.migrator().Up(); err != nil {
				return err
			}
			return printVersion(cmd, e)
		},
	}

	down := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (all of them when steps is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive number, got %q", args[0])
				}
				steps = n
			}
			if err := e.migrator().Down(steps); err != nil {
				return err
			}
			return printVersion(cmd, e)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd, e)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, e *env) error {
	status, err := e.migrator().Status()
	if err != nil {
		return err
	}

	switch {
	case !status.Applied:
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
	case status.Dirty:
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty)\n", status.Version)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "version %d\n", status.Version)
	}
	return nil
}
