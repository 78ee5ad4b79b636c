// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package data ships the SQL migrations and the seed script inside the binary
// so the API and pimsctl can initialize a database without a checkout of the
// repository.
package data

import "embed"

// MigrationsDir is the directory inside [Migrations] holding the .sql files.
const MigrationsDir = "migrations"

// Migrations holds the golang-migrate files (NNNNNN_name.up.sql / .down.sql).
//
//go:embed migrations/*.sql
var Migrations embed.FS

// SeedSQL inserts the reference rows and the sample entries.
//
//go:embed seed/seed.sql
var SeedSQL string
