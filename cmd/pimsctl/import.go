// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/importer"
)

func importCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Load archive entries from a CSV export",
		Long: `Load archive entries from a CSV export. Existing entries with the same
title, organization, location and date are updated. The whole file is applied
in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			pool, err := e.connect(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := importer.NewPostgresStore(pool, reference.NewPostgresRepository(pool))
			report, err := importer.NewService(store, nil, nil, e.logger).Import(cmd.Context(), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows read:        %d\n", report.RowsRead)
			fmt.Fprintf(out, "rows skipped:     %d\n", report.RowsSkipped)
			fmt.Fprintf(out, "entries inserted: %d\n", report.EntriesInserted)
			fmt.Fprintf(out, "entries updated:  %d\n", report.EntriesUpdated)
			fmt.Fprintf(out, "topics linked:    %d\n", report.TopicsLinked)
			return nil
		},
	}
}
