// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pims-archive/pims/internal/setup"
)

func seedCommand(e *env) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample archive into an empty database",
		Long: `Insert the bundled sample languages, topics, organizations, locations and
entries. Nothing happens when the archive already holds entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := e.connect(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			service := setup.NewService(pool, e.migrator(), nil, e.logger)

			var result setup.Result
			if migrate {
				result, err = service.Initialize(cmd.Context())
			} else {
				result.Seeded, err = service.Seed(cmd.Context())
				result.Message = setup.MessageAlreadyInitialized
				if result.Seeded {
					result.Message = setup.MessageSeeded
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations first")
	return cmd
}
