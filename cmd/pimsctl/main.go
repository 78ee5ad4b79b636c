// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Command pimsctl administers a PIMS archive database from the shell:
// migrations, seed data, CSV imports and account password hashes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := RootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
