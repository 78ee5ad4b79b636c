// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/pims", "pgx5://u:p@db:5432/pims"},
		{"postgresql://u:p@db/pims?sslmode=disable", "pgx5://u:p@db/pims?sslmode=disable"},
		{"pgx5://db/pims", "pgx5://db/pims"},
		{"host=db dbname=pims", "host=db dbname=pims"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, convertToPgx5DSN(tc.in), tc.in)
	}
}
