// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/importer"
	"github.com/pims-archive/pims/internal/platform/postgres/pgtest"
)

func newImportService(t *testing.T) (*importer.Service, *pgxpool.Pool) {
	t.Helper()

	pool := pgtest.New(t)
	store := importer.NewPostgresStore(pool, reference.NewPostgresRepository(pool))
	return importer.NewService(store, nil, nil, nil), pool
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

const archiveExport = header +
	`1,Pride Day,The Body Politic,Toronto,Ontario,1981-06-28,First march,https://example.org/1,yes,Parade,"['Pride', 'Parade']"` + "\n" +
	`2,Bath House Raids,The Body Politic,Toronto,Ontario,1981-02-05,,,,Protest,"Protest, Legal Rights"` + "\n" +
	`3,Bath House Raids,the body politic,TORONTO,ontario,1981-02-05,Police raid four bathhouses,,,Protest,Protest` + "\n" +
	`4,Undated Zine,,Halifax,,nan,,,,,` + "\n"

/*
TestPostgres_ImportThenReimport verifies that a first import creates every
reference row once and that importing the same file again updates in place.
*/
func TestPostgres_ImportThenReimport(t *testing.T) {
	service, pool := newImportService(t)
	ctx := context.Background()

	// 1. First import
	report, err := service.Import(ctx, strings.NewReader(archiveExport))
	require.NoError(t, err)

	assert.Equal(t, importer.Report{
		RowsRead:        4,
		RowsSkipped:     1,
		EntriesInserted: 3,
		TopicsLinked:    4,
	}, report)

	assert.Equal(t, 3, countRows(t, pool, "pims_main"))
	assert.Equal(t, 1, countRows(t, pool, "organizations"))
	assert.Equal(t, 1, countRows(t, pool, "locations"))
	assert.Equal(t, 4, countRows(t, pool, "topic"))
	assert.Equal(t, 4, countRows(t, pool, "pims_entry_topic"))

	var summary string
	var hasPhotos bool
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT summary, has_photos FROM pims_main WHERE title = 'Bath House Raids'").Scan(&summary, &hasPhotos))
	assert.Equal(t, "Police raid four bathhouses", summary)
	assert.False(t, hasPhotos)

	var located int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM pims_main WHERE title = 'Undated Zine' AND location_id IS NULL AND date IS NULL").Scan(&located))
	assert.Equal(t, 1, located)

	// 2. Re-import with a blank summary and a new topic
	again := header +
		`1,Pride Day,The Body Politic,Toronto,Ontario,1981-06-28,,,no,Parade,"Pride, Community"` + "\n"

	report, err = service.Import(ctx, strings.NewReader(again))
	require.NoError(t, err)
	assert.Equal(t, importer.Report{RowsRead: 1, EntriesUpdated: 1, TopicsLinked: 1}, report)

	var link string
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT summary, source_link, has_photos FROM pims_main WHERE title = 'Pride Day'").Scan(&summary, &link, &hasPhotos))
	assert.Equal(t, "First march", summary)
	assert.Equal(t, "https://example.org/1", link)
	assert.False(t, hasPhotos)

	assert.Equal(t, 3, countRows(t, pool, "pims_main"))
	assert.Equal(t, 5, countRows(t, pool, "topic"))
	assert.Equal(t, 5, countRows(t, pool, "pims_entry_topic"))
}

func TestPostgres_ImportIsAllOrNothing(t *testing.T) {
	pool := pgtest.New(t)
	store := importer.NewPostgresStore(pool, reference.NewPostgresRepository(pool))

	rows := []importer.Row{
		{Line: 2, Title: "Pride Day", OrganizationName: "The Body Politic", Topics: []string{"Pride"}},
		{Line: 3, Title: strings.Repeat("x", 300)},
	}

	_, err := store.Apply(context.Background(), rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Line 3")

	assert.Zero(t, countRows(t, pool, "pims_main"))
	assert.Zero(t, countRows(t, pool, "organizations"))
	assert.Zero(t, countRows(t, pool, "topic"))
}
