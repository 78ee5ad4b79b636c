// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer

import "context"

// Store applies parsed rows to the archive.
type Store interface {
	// Apply upserts rows in one transaction. Either every row is stored or none.
	Apply(context context.Context, rows []Row) (Report, error)
}
