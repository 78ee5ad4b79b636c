// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// PostgreSQL failures are classified by SQLSTATE rather than by message text,
// so a missing table, a dangling foreign key and a duplicate name each reach the
// client with their own status.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pims-archive/pims/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// Errors that already are an [apperr.AppError] pass through untouched.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if apperr.IsAppError(err) {
		return err
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound.WithCause(cause)
	}

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedTable:
			return apperr.SchemaNotInitialized(cause)

		case pgerrcode.ForeignKeyViolation:
			ae := apperr.Unprocessable(referenceMessage(pgErr))
			ae.Cause = cause
			return ae

		case pgerrcode.UniqueViolation:
			ae := apperr.Conflict("A record with the same unique value already exists")
			ae.Cause = cause
			return ae

		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation,
			pgerrcode.StringDataRightTruncationDataException,
			pgerrcode.InvalidDatetimeFormat, pgerrcode.DatetimeFieldOverflow:
			ae := apperr.ValidationError("Invalid value for column " + columnOf(pgErr))
			ae.Cause = cause
			return ae

		case pgerrcode.QueryCanceled:
			ae := apperr.ServiceUnavailable("The database took too long to respond")
			ae.Cause = cause
			return ae
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(cause)
}

// IsUndefinedTable reports whether err was raised because a table is missing.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UndefinedTable
	}
	return apperr.HasCode(err, apperr.CodeSchemaNotInitialized)
}

// referenceMessage names the constraint that failed when the driver reports one.
func referenceMessage(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return "Referenced record does not exist (" + pgErr.ConstraintName + ")"
	}
	return "Referenced record does not exist"
}

func columnOf(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	return "value"
}
