// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"no rows", pgx.ErrNoRows, apperr.CodeNotFound, http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound, http.StatusNotFound},
		{"missing table", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, apperr.CodeSchemaNotInitialized, http.StatusServiceUnavailable},
		{"foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "pims_entry_topic_topic_id_fkey"}, apperr.CodeUnprocessable, http.StatusUnprocessableEntity},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, apperr.CodeConflict, http.StatusConflict},
		{"not null", &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "title"}, apperr.CodeValidation, http.StatusBadRequest},
		{"other", errors.New("connection reset"), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tc.err, "test action")

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tc.wantCode, ae.Code)
			assert.Equal(t, tc.wantStatus, ae.HTTPStatus)
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

func TestWrap_PassesAppErrorThrough(t *testing.T) {
	original := apperr.NotFound("Entry")
	assert.Same(t, original, dberr.Wrap(original, "get entry"))
}

func TestWrap_DoesNotMutateSharedNotFound(t *testing.T) {
	_ = dberr.Wrap(pgx.ErrNoRows, "first")
	assert.Nil(t, dberr.ErrNotFound.Cause)
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, dberr.IsUndefinedTable(&pgconn.PgError{Code: pgerrcode.UndefinedTable}))
	assert.True(t, dberr.IsUndefinedTable(dberr.Wrap(&pgconn.PgError{Code: pgerrcode.UndefinedTable}, "stats")))
	assert.False(t, dberr.IsUndefinedTable(errors.New("boom")))
}
