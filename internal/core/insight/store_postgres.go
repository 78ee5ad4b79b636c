// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package insight

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pims-archive/pims/internal/platform/database/schema"
	"github.com/pims-archive/pims/internal/platform/dberr"
)

// PostgresRepository implements [Repository] with GROUP BY queries.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed insight store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Stats counts entries, organizations and topics, and the distinct cities and
// provinces among locations, in one round-trip.
func (repository *PostgresRepository) Stats(context context.Context) (Stats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %[1]s),
			(SELECT COUNT(*) FROM %[2]s),
			(SELECT COUNT(DISTINCT %[4]s) FROM %[3]s WHERE %[4]s IS NOT NULL),
			(SELECT COUNT(DISTINCT %[5]s) FROM %[3]s WHERE %[5]s IS NOT NULL),
			(SELECT COUNT(*) FROM %[6]s)
	`,
		schema.PimsMain.Table,     // 1
		schema.Organization.Table, // 2
		schema.Location.Table,     // 3
		schema.Location.City,      // 4
		schema.Location.Province,  // 5
		schema.Topic.Table,        // 6
	)

	var stats Stats
	err := repository.db.QueryRow(context, query).Scan(
		&stats.TotalRecords,
		&stats.Organizations,
		&stats.Cities,
		&stats.Provinces,
		&stats.Topics,
	)
	if err != nil {
		return Stats{}, dberr.Wrap(err, "insight_stats")
	}
	return stats, nil
}

func (repository *PostgresRepository) CountByYear(context context.Context) (map[int]int, error) {
	return repository.countByDatePart(context, "EXTRACT(YEAR FROM m.%[1]s)::int", "insight_by_year")
}

func (repository *PostgresRepository) CountByMonth(context context.Context) (map[int]int, error) {
	return repository.countByDatePart(context, "EXTRACT(MONTH FROM m.%[1]s)::int", "insight_by_month")
}

func (repository *PostgresRepository) CountByDecade(context context.Context) (map[int]int, error) {
	return repository.countByDatePart(context, "(EXTRACT(YEAR FROM m.%[1]s)::int / 10) * 10", "insight_by_decade")
}

// countByDatePart groups the dated entries by an integer expression over the
// date column. expr references the column as %[1]s.
func (repository *PostgresRepository) countByDatePart(context context.Context, expr, action string) (map[int]int, error) {
	bucket := fmt.Sprintf(expr, schema.PimsMain.Date)
	query := fmt.Sprintf(`
		SELECT %[1]s AS bucket, COUNT(*)
		FROM %[2]s m
		WHERE m.%[3]s IS NOT NULL
		GROUP BY bucket
	`, bucket, schema.PimsMain.Table, schema.PimsMain.Date)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var key, count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, dberr.Wrap(err, action)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return counts, nil
}

// CountByTopic counts junction rows per topic, busiest first, ties by name.
func (repository *PostgresRepository) CountByTopic(context context.Context) ([]TopicCount, error) {
	query := fmt.Sprintf(`
		SELECT t.%[1]s, COUNT(*) AS total
		FROM %[2]s et
		JOIN %[3]s t ON t.%[4]s = et.%[5]s
		GROUP BY t.%[1]s
		ORDER BY total DESC, t.%[1]s ASC
	`,
		schema.Topic.Name,             // 1
		schema.PimsEntryTopic.Table,   // 2
		schema.Topic.Table,            // 3
		schema.Topic.ID,               // 4
		schema.PimsEntryTopic.TopicID, // 5
	)

	var out []TopicCount
	err := repository.collect(context, query, "insight_by_topic", func(scan func(...any) error) error {
		var row TopicCount
		if err := scan(&row.Topic, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return nonNil(out), err
}

// CountByProvince counts entries per province of their location.
func (repository *PostgresRepository) CountByProvince(context context.Context) ([]ProvinceCount, error) {
	query := fmt.Sprintf(`
		SELECT l.%[1]s, COUNT(*) AS total
		FROM %[2]s m
		JOIN %[3]s l ON l.%[4]s = m.%[5]s
		WHERE l.%[1]s IS NOT NULL
		GROUP BY l.%[1]s
		ORDER BY total DESC, l.%[1]s ASC
	`,
		schema.Location.Province,   // 1
		schema.PimsMain.Table,      // 2
		schema.Location.Table,      // 3
		schema.Location.ID,         // 4
		schema.PimsMain.LocationID, // 5
	)

	var out []ProvinceCount
	err := repository.collect(context, query, "insight_by_province", func(scan func(...any) error) error {
		var row ProvinceCount
		if err := scan(&row.Province, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return nonNil(out), err
}

// CountByOrganization counts entries per organization.
func (repository *PostgresRepository) CountByOrganization(context context.Context) ([]OrganizationCount, error) {
	query := fmt.Sprintf(`
		SELECT o.%[1]s, COUNT(*) AS total
		FROM %[2]s m
		JOIN %[3]s o ON o.%[4]s = m.%[5]s
		GROUP BY o.%[1]s
		ORDER BY total DESC, o.%[1]s ASC
	`,
		schema.Organization.Name,       // 1
		schema.PimsMain.Table,          // 2
		schema.Organization.Table,      // 3
		schema.Organization.ID,         // 4
		schema.PimsMain.OrganizationID, // 5
	)

	var out []OrganizationCount
	err := repository.collect(context, query, "insight_by_organization", func(scan func(...any) error) error {
		var row OrganizationCount
		if err := scan(&row.Organization, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return nonNil(out), err
}

// Entries returns every entry flattened with its place and organization, newest first.
func (repository *PostgresRepository) Entries(context context.Context) ([]EntryRow, error) {
	query := fmt.Sprintf(`
		SELECT
			m.%[1]s, m.%[2]s, to_char(m.%[3]s, 'YYYY-MM-DD'), m.%[4]s, m.%[5]s, m.%[6]s, m.%[7]s,
			l.%[8]s, l.%[9]s, o.%[10]s
		FROM %[11]s m
		LEFT JOIN %[12]s l ON l.%[13]s = m.%[14]s
		LEFT JOIN %[15]s o ON o.%[16]s = m.%[17]s
		ORDER BY m.%[3]s DESC NULLS LAST, m.%[1]s DESC
	`,
		schema.PimsMain.ID,             // 1
		schema.PimsMain.Title,          // 2
		schema.PimsMain.Date,           // 3
		schema.PimsMain.Summary,        // 4
		schema.PimsMain.SourceLink,     // 5
		schema.PimsMain.HasPhotos,      // 6
		schema.PimsMain.Type,           // 7
		schema.Location.City,           // 8
		schema.Location.Province,       // 9
		schema.Organization.Name,       // 10
		schema.PimsMain.Table,          // 11
		schema.Location.Table,          // 12
		schema.Location.ID,             // 13
		schema.PimsMain.LocationID,     // 14
		schema.Organization.Table,      // 15
		schema.Organization.ID,         // 16
		schema.PimsMain.OrganizationID, // 17
	)

	var out []EntryRow
	err := repository.collect(context, query, "insight_entries", func(scan func(...any) error) error {
		var row EntryRow
		if err := scan(
			&row.ID, &row.Title, &row.Date, &row.Summary, &row.SourceLink, &row.HasPhotos, &row.Type,
			&row.City, &row.Province, &row.OrganizationName,
		); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return nonNil(out), err
}

// collect runs query and hands each row's Scan to fn.
func (repository *PostgresRepository) collect(context context.Context, query, action string, fn func(scan func(...any) error) error) error {
	rows, err := repository.db.Query(context, query)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows.Scan); err != nil {
			return dberr.Wrap(err, action)
		}
	}
	return dberr.Wrap(rows.Err(), action)
}

// nonNil keeps empty results rendering as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
