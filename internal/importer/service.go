// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/metrics"
)

// Invalidator drops cached dashboard views after an import.
type Invalidator interface {
	Invalidate(context context.Context) error
}

// maxNameLength mirrors the VARCHAR(255) columns.
const maxNameLength = 255

// Service parses, deduplicates and stores CSV imports.
type Service struct {
	store       Store
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewService constructs a new import [Service]. invalidator and m may be nil.
func NewService(store Store, invalidator Invalidator, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, invalidator: invalidator, metrics: m, logger: logger}
}

/*
Import reads a CSV export and upserts its rows.

Parameters:
  - context: context.Context
  - r: io.Reader (the CSV file)

Returns:
  - Report: Counters for the whole file
  - error: VALIDATION_ERROR for unreadable files or oversized values; nothing
    is stored on error
*/
func (service *Service) Import(context context.Context, r io.Reader) (Report, error) {
	rows, blank, err := Parse(r)
	if err != nil {
		return Report{}, err
	}

	if err := checkLengths(rows); err != nil {
		return Report{}, err
	}

	unique, duplicates := Dedupe(rows)

	report, err := service.store.Apply(context, unique)
	if err != nil {
		service.logger.WarnContext(context, "import_failed", slog.Int("rows", len(rows)), slog.Any("error", err))
		return Report{}, err
	}

	report.RowsRead = len(rows) + blank
	report.RowsSkipped = blank + duplicates
	report.DatesDropped = service.logDroppedDates(context, rows)

	service.logger.InfoContext(context, "import_completed",
		slog.Int("rows_read", report.RowsRead),
		slog.Int("inserted", report.EntriesInserted),
		slog.Int("updated", report.EntriesUpdated),
		slog.Int("skipped", report.RowsSkipped),
		slog.Int("dates_dropped", report.DatesDropped),
	)

	service.metrics.EntryWrite("import")
	if service.invalidator != nil {
		if err := service.invalidator.Invalidate(context); err != nil {
			service.logger.WarnContext(context, "dashboard_invalidate_failed", slog.Any("error", err))
		}
	}

	return report, nil
}

// maxLoggedDates caps the sample of dropped dates written to the log.
const maxLoggedDates = 10

// logDroppedDates warns about rows stored without a date because the cell
// could not be parsed, and returns how many there were.
func (service *Service) logDroppedDates(context context.Context, rows []Row) int {
	dropped := 0
	for _, row := range rows {
		if row.DroppedDate == "" {
			continue
		}
		dropped++
		if dropped <= maxLoggedDates {
			service.logger.WarnContext(context, "import_date_dropped",
				slog.Int("line", row.Line),
				slog.String("value", row.DroppedDate),
			)
		}
	}
	return dropped
}

func checkLengths(rows []Row) error {
	for _, row := range rows {
		for column, value := range map[string]string{
			ColumnTitle:            row.Title,
			ColumnOrganizationName: row.OrganizationName,
			ColumnCity:             row.City,
			ColumnProvince:         row.Province,
			ColumnEventType:        row.Type,
		} {
			if utf8.RuneCountInString(value) > maxNameLength {
				return apperr.ValidationError(fmt.Sprintf("Line %d: %s is longer than %d characters", row.Line, column, maxNameLength))
			}
		}
		for _, topic := range row.Topics {
			if utf8.RuneCountInString(topic) > maxNameLength {
				return apperr.ValidationError(fmt.Sprintf("Line %d: a topic is longer than %d characters", row.Line, maxNameLength))
			}
		}
	}
	return nil
}
