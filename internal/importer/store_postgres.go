// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/database/schema"
	"github.com/pims-archive/pims/internal/platform/dberr"
	"github.com/pims-archive/pims/internal/platform/postgres"
)

// PostgresStore implements [Store].
type PostgresStore struct {
	db    *pgxpool.Pool
	names reference.NameResolver
}

// NewPostgresStore constructs a PostgreSQL import target.
func NewPostgresStore(db *pgxpool.Pool, names reference.NameResolver) *PostgresStore {
	return &PostgresStore{db: db, names: names}
}

var (
	findEntryQuery = fmt.Sprintf(`
		SELECT %[1]s FROM %[2]s
		WHERE lower(%[3]s) = lower($1)
		  AND %[4]s IS NOT DISTINCT FROM $2
		  AND %[5]s IS NOT DISTINCT FROM $3
		  AND %[6]s IS NOT DISTINCT FROM $4
		ORDER BY %[1]s
		LIMIT 1
		FOR UPDATE`,
		schema.PimsMain.ID,             // 1
		schema.PimsMain.Table,          // 2
		schema.PimsMain.Title,          // 3
		schema.PimsMain.OrganizationID, // 4
		schema.PimsMain.LocationID,     // 5
		schema.PimsMain.Date,           // 6
	)

	// Blank incoming summaries and links keep the stored value.
	updateEntryQuery = fmt.Sprintf(`
		UPDATE %[1]s SET
			%[2]s = COALESCE(NULLIF($2, ''), %[2]s),
			%[3]s = COALESCE(NULLIF($3, ''), %[3]s),
			%[4]s = $4,
			%[5]s = COALESCE(NULLIF($5, ''), %[5]s)
		WHERE %[6]s = $1`,
		schema.PimsMain.Table,      // 1
		schema.PimsMain.Summary,    // 2
		schema.PimsMain.SourceLink, // 3
		schema.PimsMain.HasPhotos,  // 4
		schema.PimsMain.Type,       // 5
		schema.PimsMain.ID,         // 6
	)

	insertEntryQuery = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''))
		RETURNING %s`,
		schema.PimsMain.Table,
		schema.PimsMain.Title,
		schema.PimsMain.OrganizationID,
		schema.PimsMain.LocationID,
		schema.PimsMain.Date,
		schema.PimsMain.Summary,
		schema.PimsMain.SourceLink,
		schema.PimsMain.HasPhotos,
		schema.PimsMain.Type,
		schema.PimsMain.ID,
	)

	linkTopicQuery = fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		schema.PimsEntryTopic.Table, schema.PimsEntryTopic.PimsID, schema.PimsEntryTopic.TopicID)
)

/*
Apply upserts every row inside one transaction.

Description: Organizations, locations and topics are found or created by
normalized name. An existing entry with the same title, organization, location
and date is updated instead of duplicated.
*/
func (store *PostgresStore) Apply(context context.Context, rows []Row) (Report, error) {
	var report Report

	err := postgres.WithTx(context, store.db, func(transaction pgx.Tx) error {
		for _, row := range rows {
			if err := store.applyRow(context, transaction, row, &report); err != nil {
				return atLine(row.Line, err)
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// atLine prefixes the client-facing message with the CSV line number.
func atLine(line int, err error) error {
	ae := apperr.As(err)
	if ae == nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	located := *ae
	located.Message = fmt.Sprintf("Line %d: %s", line, ae.Message)
	return &located
}

func (store *PostgresStore) applyRow(context context.Context, transaction pgx.Tx, row Row, report *Report) error {
	var organizationID, locationID *int

	if row.OrganizationName != "" {
		id, err := store.names.FindOrCreateOrganization(context, transaction, row.OrganizationName)
		if err != nil {
			return err
		}
		organizationID = &id
	}

	if row.City != "" && row.Province != "" {
		id, err := store.names.FindOrCreateLocation(context, transaction, row.City, row.Province)
		if err != nil {
			return err
		}
		locationID = &id
	}

	var entryID int
	err := transaction.QueryRow(context, findEntryQuery, row.Title, organizationID, locationID, row.Date).Scan(&entryID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = transaction.QueryRow(context, insertEntryQuery,
			row.Title, organizationID, locationID, row.Date, row.Summary, row.SourceLink, row.HasPhotos, row.Type,
		).Scan(&entryID)
		if err != nil {
			return dberr.Wrap(err, "import_insert_entry")
		}
		report.EntriesInserted++

	case err != nil:
		return dberr.Wrap(err, "import_find_entry")

	default:
		if _, err := transaction.Exec(context, updateEntryQuery,
			entryID, row.Summary, row.SourceLink, row.HasPhotos, row.Type,
		); err != nil {
			return dberr.Wrap(err, "import_update_entry")
		}
		report.EntriesUpdated++
	}

	if len(row.Topics) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, name := range row.Topics {
		topicID, err := store.names.FindOrCreateTopic(context, transaction, name)
		if err != nil {
			return err
		}
		batch.Queue(linkTopicQuery, entryID, topicID)
	}

	results := transaction.SendBatch(context, batch)
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "import_link_topics")
		}
		report.TopicsLinked += int(tag.RowsAffected())
	}
	return dberr.Wrap(results.Close(), "import_link_topics")
}
