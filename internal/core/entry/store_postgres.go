/*
Package entry provides the PostgreSQL implementation of the entry repository.

Reads lean on the database for the work the archive used to do row by row:
  - Window Function: COUNT(*) OVER() returns the total alongside the page;
    only a page past the end needs a separate count.
  - Batched Enrichment: topics for a whole page come back in one ANY($1) query.
  - JSON Aggregation: an entry's translations are folded into a single column.

Writes run inside [postgres.WithTx] and replace junction rows with a delete
followed by one pgx.Batch of inserts.
*/
package entry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pims-archive/pims/internal/core/reference"
	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/database/schema"
	"github.com/pims-archive/pims/internal/platform/dberr"
	"github.com/pims-archive/pims/internal/platform/postgres"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db    *pgxpool.Pool
	names reference.NameResolver
}

// NewPostgresRepository constructs a PostgreSQL backed entry store.
// names resolves organization, location and topic names for contributions.
func NewPostgresRepository(db *pgxpool.Pool, names reference.NameResolver) *PostgresRepository {
	return &PostgresRepository{db: db, names: names}
}

// # Shared Projection

// entryColumns is the localized projection of an entry row. Every query using it
// binds the language id (or NULL) to $1.
var entryColumns = fmt.Sprintf(`
		m.%[1]s,
		COALESCE(NULLIF(tr.%[13]s, ''), m.%[2]s),
		m.%[3]s,
		m.%[4]s,
		to_char(m.%[5]s, 'YYYY-MM-DD'),
		COALESCE(NULLIF(tr.%[14]s, ''), m.%[6]s, ''),
		COALESCE(NULLIF(tr.%[15]s, ''), m.%[7]s),
		m.%[8]s,
		m.%[9]s,
		o.%[10]s,
		l.%[11]s,
		l.%[12]s`,
	schema.PimsMain.ID,                    // 1
	schema.PimsMain.Title,                 // 2
	schema.PimsMain.OrganizationID,        // 3
	schema.PimsMain.LocationID,            // 4
	schema.PimsMain.Date,                  // 5
	schema.PimsMain.Summary,               // 6
	schema.PimsMain.SourceLink,            // 7
	schema.PimsMain.HasPhotos,             // 8
	schema.PimsMain.Type,                  // 9
	schema.Organization.Name,              // 10
	schema.Location.City,                  // 11
	schema.Location.Province,              // 12
	schema.PimsMainTranslation.Title,      // 13
	schema.PimsMainTranslation.Summary,    // 14
	schema.PimsMainTranslation.SourceLink, // 15
)

// entryFrom joins organization, location and the requested translation.
var entryFrom = fmt.Sprintf(`
		FROM %[1]s m
		LEFT JOIN %[2]s o ON o.%[3]s = m.%[4]s
		LEFT JOIN %[5]s l ON l.%[6]s = m.%[7]s
		LEFT JOIN %[8]s tr ON tr.%[9]s = m.%[10]s AND tr.%[11]s = $1`,
	schema.PimsMain.Table,                 // 1
	schema.Organization.Table,             // 2
	schema.Organization.ID,                // 3
	schema.PimsMain.OrganizationID,        // 4
	schema.Location.Table,                 // 5
	schema.Location.ID,                    // 6
	schema.PimsMain.LocationID,            // 7
	schema.PimsMainTranslation.Table,      // 8
	schema.PimsMainTranslation.PimsID,     // 9
	schema.PimsMain.ID,                    // 10
	schema.PimsMainTranslation.LanguageID, // 11
)

// entryDest returns the scan targets matching [entryColumns].
func entryDest(e *Entry) []any {
	return []any{
		&e.ID,
		&e.Title,
		&e.OrganizationID,
		&e.LocationID,
		&e.Date,
		&e.Summary,
		&e.SourceLink,
		&e.HasPhotos,
		&e.Type,
		&e.OrganizationName,
		&e.City,
		&e.Province,
	}
}

// likeEscaper neutralizes LIKE wildcards so user text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// # Reads

/*
List returns a filtered, paginated slice of entries and the total count.

Description: Free text matches title or summary (and the requested translation)
case-insensitively. Topic filters are EXISTS sub-selects against the junction so
an entry linked to several matching topics is still returned once.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Entry: Entries with topics attached
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	where, args := listConditions(filter)
	argID := len(args) + 1

	query := "SELECT " + entryColumns + ",\n\t\tCOUNT(*) OVER() AS total_count" + entryFrom + where +
		" ORDER BY " + orderBy(filter.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)

	rows, err := repository.db.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_entries")
	}
	defer rows.Close()

	entries := make([]*Entry, 0, limit)
	var totalCount int

	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(append(entryDest(e), &totalCount)...); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_entries")
	}

	// A page past the end has no row to carry the window count.
	if len(entries) == 0 && offset > 0 {
		if err := repository.db.QueryRow(context, "SELECT COUNT(*)"+entryFrom+where, args...).Scan(&totalCount); err != nil {
			return nil, 0, dberr.Wrap(err, "count_entries")
		}
	}

	if err := attachTopics(context, repository.db, entries, filter.LanguageID); err != nil {
		return nil, 0, err
	}

	return entries, totalCount, nil
}

// listConditions builds the WHERE clause of [PostgresRepository.List]. The
// language id is always bound to $1 for the translation join.
func listConditions(filter Filter) (string, []any) {
	var queryBuilder strings.Builder
	args := []any{filter.LanguageID}
	argID := 2

	queryBuilder.WriteString("\n\t\tWHERE TRUE")

	// Free text
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (m.%[1]s ILIKE $%[3]d OR m.%[2]s ILIKE $%[3]d OR tr.%[1]s ILIKE $%[3]d OR tr.%[2]s ILIKE $%[3]d)",
			schema.PimsMain.Title, schema.PimsMain.Summary, argID))
		args = append(args, "%"+likeEscaper.Replace(filter.Query)+"%")
		argID++
	}

	// Organization by id or name
	if filter.OrganizationID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s = $%d", schema.PimsMain.OrganizationID, argID))
		args = append(args, *filter.OrganizationID)
		argID++
	}
	if filter.Organization != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND lower(o.%s) = lower($%d)", schema.Organization.Name, argID))
		args = append(args, filter.Organization)
		argID++
	}

	// Location by id or "City, Province"
	if filter.LocationID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s = $%d", schema.PimsMain.LocationID, argID))
		args = append(args, *filter.LocationID)
		argID++
	}
	if filter.City != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND lower(l.%s) = lower($%d)", schema.Location.City, argID))
		args = append(args, filter.City)
		argID++
	}
	if filter.Province != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND lower(l.%s) = lower($%d)", schema.Location.Province, argID))
		args = append(args, filter.Province)
		argID++
	}

	// Date range, inclusive on both ends
	if filter.StartDate != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s >= $%d", schema.PimsMain.Date, argID))
		args = append(args, *filter.StartDate)
		argID++
	}
	if filter.EndDate != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s <= $%d", schema.PimsMain.Date, argID))
		args = append(args, *filter.EndDate)
		argID++
	}

	// Decade
	if filter.DecadeStart != nil {
		start := time.Date(*filter.DecadeStart, time.January, 1, 0, 0, 0, 0, time.UTC)
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%[1]s >= $%[2]d AND m.%[1]s < $%[3]d", schema.PimsMain.Date, argID, argID+1))
		args = append(args, start, start.AddDate(10, 0, 0))
		argID += 2
	}

	// Topic by id
	if filter.TopicID != nil {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM %s et WHERE et.%s = m.%s AND et.%s = $%d)",
			schema.PimsEntryTopic.Table, schema.PimsEntryTopic.PimsID, schema.PimsMain.ID, schema.PimsEntryTopic.TopicID, argID))
		args = append(args, *filter.TopicID)
		argID++
	}

	// Topics by canonical or translated name, any of
	if len(filter.Topics) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(`
		AND EXISTS (
			SELECT 1 FROM %[1]s et
			JOIN %[2]s t ON t.%[3]s = et.%[4]s
			WHERE et.%[5]s = m.%[6]s
			  AND (lower(t.%[7]s) = ANY($%[11]d) OR EXISTS (
				SELECT 1 FROM %[8]s tt WHERE tt.%[9]s = t.%[3]s AND lower(tt.%[10]s) = ANY($%[11]d)))
		)`,
			schema.PimsEntryTopic.Table,             // 1
			schema.Topic.Table,                      // 2
			schema.Topic.ID,                         // 3
			schema.PimsEntryTopic.TopicID,           // 4
			schema.PimsEntryTopic.PimsID,            // 5
			schema.PimsMain.ID,                      // 6
			schema.Topic.Name,                       // 7
			schema.TopicTranslation.Table,           // 8
			schema.TopicTranslation.TopicID,         // 9
			schema.TopicTranslation.TranslatedTopic, // 10
			argID,                                   // 11
		))
		args = append(args, filter.Topics)
		argID++
	}

	// Photos flag
	if filter.HasPhotos != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s = $%d", schema.PimsMain.HasPhotos, argID))
		args = append(args, *filter.HasPhotos)
		argID++
	}

	// Type label
	if filter.Type != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND lower(m.%s) = lower($%d)", schema.PimsMain.Type, argID))
		args = append(args, filter.Type)
	}

	return queryBuilder.String(), args
}

// orderBy maps a [Sort] to its ORDER BY clause. Unknown values sort by date, newest first.
func orderBy(sort Sort) string {
	id, date, title := "m."+schema.PimsMain.ID, "m."+schema.PimsMain.Date, "m."+schema.PimsMain.Title

	switch sort {
	case SortDateAsc:
		return date + " ASC NULLS LAST, " + id + " ASC"
	case SortTitleAsc:
		return "lower(" + title + ") ASC, " + id + " ASC"
	case SortTitleDesc:
		return "lower(" + title + ") DESC, " + id + " DESC"
	default:
		return date + " DESC NULLS LAST, " + id + " DESC"
	}
}

/*
FindByID retrieves an entry with its topics and all of its translations.

Parameters:
  - context: context.Context
  - id: int
  - languageID: *int (nil keeps the stored language)

Returns:
  - *Entry: The hydrated entry
  - error: apperr NotFound when the entry does not exist
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int, languageID *int) (*Entry, error) {
	query := "SELECT " + entryColumns + fmt.Sprintf(`,
		COALESCE((
			SELECT json_agg(json_build_object(
				'language_id', t.%[2]s,
				'language_code', lg.%[6]s,
				'title', COALESCE(t.%[3]s, ''),
				'summary', COALESCE(t.%[4]s, ''),
				'source_link', t.%[5]s
			) ORDER BY t.%[2]s)
			FROM %[1]s t
			JOIN %[7]s lg ON lg.%[8]s = t.%[2]s
			WHERE t.%[9]s = m.%[10]s
		), '[]') AS translations`,
		schema.PimsMainTranslation.Table,      // 1
		schema.PimsMainTranslation.LanguageID, // 2
		schema.PimsMainTranslation.Title,      // 3
		schema.PimsMainTranslation.Summary,    // 4
		schema.PimsMainTranslation.SourceLink, // 5
		schema.Language.Code,                  // 6
		schema.Language.Table,                 // 7
		schema.Language.ID,                    // 8
		schema.PimsMainTranslation.PimsID,     // 9
		schema.PimsMain.ID,                    // 10
	) + entryFrom + fmt.Sprintf("\n\t\tWHERE m.%s = $2", schema.PimsMain.ID)

	e := &Entry{}
	var translationsJSON []byte

	err := repository.db.QueryRow(context, query, languageID, id).Scan(append(entryDest(e), &translationsJSON)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Entry")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_entry")
	}

	if err := json.Unmarshal(translationsJSON, &e.Translations); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal entry translations: %w", err)
	}

	if err := attachTopics(context, repository.db, []*Entry{e}, languageID); err != nil {
		return nil, err
	}

	return e, nil
}

// Related returns up to limit entries sharing the organization, the location or a topic with id.
func (repository *PostgresRepository) Related(context context.Context, id int, languageID *int, limit int) ([]*Entry, error) {
	var exists bool
	existsQuery := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.PimsMain.Table, schema.PimsMain.ID)
	if err := repository.db.QueryRow(context, existsQuery, id).Scan(&exists); err != nil {
		return nil, dberr.Wrap(err, "related_entries")
	}
	if !exists {
		return nil, apperr.NotFound("Entry")
	}

	query := "SELECT " + entryColumns + entryFrom + fmt.Sprintf(`
		WHERE m.%[1]s <> $2 AND (
			(m.%[2]s IS NOT NULL AND m.%[2]s = (SELECT %[2]s FROM %[5]s WHERE %[1]s = $2))
			OR (m.%[3]s IS NOT NULL AND m.%[3]s = (SELECT %[3]s FROM %[5]s WHERE %[1]s = $2))
			OR EXISTS (
				SELECT 1 FROM %[6]s a
				JOIN %[6]s b ON b.%[8]s = a.%[8]s
				WHERE a.%[7]s = $2 AND b.%[7]s = m.%[1]s
			)
		)
		ORDER BY m.%[4]s DESC NULLS LAST, m.%[1]s DESC
		LIMIT $3`,
		schema.PimsMain.ID,             // 1
		schema.PimsMain.OrganizationID, // 2
		schema.PimsMain.LocationID,     // 3
		schema.PimsMain.Date,           // 4
		schema.PimsMain.Table,          // 5
		schema.PimsEntryTopic.Table,    // 6
		schema.PimsEntryTopic.PimsID,   // 7
		schema.PimsEntryTopic.TopicID,  // 8
	)

	rows, err := repository.db.Query(context, query, languageID, id, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "related_entries")
	}
	defer rows.Close()

	entries := make([]*Entry, 0, limit)
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(entryDest(e)...); err != nil {
			return nil, dberr.Wrap(err, "scan_entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "related_entries")
	}

	if err := attachTopics(context, repository.db, entries, languageID); err != nil {
		return nil, err
	}
	return entries, nil
}

/*
attachTopics loads the topics of every entry in one round-trip.

Topic names are localized when languageID has a translation. Entries without
topics get an empty, non-nil slice.
*/
func attachTopics(context context.Context, db postgres.DBTX, entries []*Entry, languageID *int) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int, len(entries))
	byID := make(map[int]*Entry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		e.Topics = []TopicRef{}
		byID[e.ID] = e
	}

	query := fmt.Sprintf(`
		SELECT et.%[1]s, t.%[3]s, COALESCE(tt.%[6]s, t.%[4]s) AS name
		FROM %[2]s et
		JOIN %[5]s t ON t.%[3]s = et.%[7]s
		LEFT JOIN %[8]s tt ON tt.%[9]s = t.%[3]s AND tt.%[10]s = $2
		WHERE et.%[1]s = ANY($1)
		ORDER BY et.%[1]s, name
	`,
		schema.PimsEntryTopic.PimsID,            // 1
		schema.PimsEntryTopic.Table,             // 2
		schema.Topic.ID,                         // 3
		schema.Topic.Name,                       // 4
		schema.Topic.Table,                      // 5
		schema.TopicTranslation.TranslatedTopic, // 6
		schema.PimsEntryTopic.TopicID,           // 7
		schema.TopicTranslation.Table,           // 8
		schema.TopicTranslation.TopicID,         // 9
		schema.TopicTranslation.LanguageID,      // 10
	)

	rows, err := db.Query(context, query, ids, languageID)
	if err != nil {
		return dberr.Wrap(err, "entry_topics")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID int
			topic   TopicRef
		)
		if err := rows.Scan(&entryID, &topic.ID, &topic.Name); err != nil {
			return dberr.Wrap(err, "scan_entry_topic")
		}
		if e, ok := byID[entryID]; ok {
			e.Topics = append(e.Topics, topic)
		}
	}

	return dberr.Wrap(rows.Err(), "entry_topics")
}

// # Writes

/*
Create inserts an entry, its topic links and its non-blank translations.

Description: The three steps share one transaction, so a bad topic id or a
duplicate translation language rolls the entry back too.

Parameters:
  - context: context.Context
  - input: *Input

Returns:
  - int: The new entry id
  - error: FK violations map to 422, duplicates to 409
*/
func (repository *PostgresRepository) Create(context context.Context, input *Input) (int, error) {
	var id int

	err := postgres.WithTx(context, repository.db, func(transaction pgx.Tx) error {
		var err error
		if id, err = insertEntry(context, transaction, &input.Fields); err != nil {
			return err
		}

		if err := updateJunction(context, transaction, id, input.TopicIDs); err != nil {
			return err
		}

		return replaceTranslations(context, transaction, id, input.Translations)
	})

	return id, err
}

/*
Update replaces an entry's columns, topics and translations.

Description: The row is locked with SELECT ... FOR UPDATE first, so two editors
saving the same entry serialize and the later save fully wins.

Returns:
  - error: apperr NotFound when the entry does not exist
*/
func (repository *PostgresRepository) Update(context context.Context, id int, input *Input) error {
	return postgres.WithTx(context, repository.db, func(transaction pgx.Tx) error {
		if err := lockEntry(context, transaction, id); err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE %[1]s SET
				%[2]s = $2, %[3]s = $3, %[4]s = $4, %[5]s = $5,
				%[6]s = $6, %[7]s = $7, %[8]s = $8, %[9]s = $9
			WHERE %[10]s = $1
		`,
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

		f := &input.Fields
		if _, err := transaction.Exec(context, query, id,
			f.Title, f.OrganizationID, f.LocationID, f.Date, f.Summary, f.SourceLink, f.HasPhotos, f.Type,
		); err != nil {
			return dberr.Wrap(err, "update_entry")
		}

		if err := updateJunction(context, transaction, id, input.TopicIDs); err != nil {
			return err
		}

		return replaceTranslations(context, transaction, id, input.Translations)
	})
}

// Delete removes the topic links, the translations and the entry row together.
func (repository *PostgresRepository) Delete(context context.Context, id int) error {
	return postgres.WithTx(context, repository.db, func(transaction pgx.Tx) error {
		statements := []string{
			fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.PimsEntryTopic.Table, schema.PimsEntryTopic.PimsID),
			fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.PimsMainTranslation.Table, schema.PimsMainTranslation.PimsID),
		}
		for _, statement := range statements {
			if _, err := transaction.Exec(context, statement, id); err != nil {
				return dberr.Wrap(err, "delete_entry_children")
			}
		}

		tag, err := transaction.Exec(context,
			fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.PimsMain.Table, schema.PimsMain.ID), id)
		if err != nil {
			return dberr.Wrap(err, "delete_entry")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Entry")
		}
		return nil
	})
}

/*
CreateContribution stores a public submission in one transaction.

Description: Resolves the organization (id, or find-or-create by name), the
location (id, or find-or-create from "City, Province"), inserts the entry, then
find-or-creates every tag as a topic and links it. A translation is added when
it is not blank.

Returns:
  - int: The new entry id
  - error: Validation or database failures; nothing is stored on error
*/
func (repository *PostgresRepository) CreateContribution(context context.Context, contribution *Contribution) (int, error) {
	var id int

	err := postgres.WithTx(context, repository.db, func(transaction pgx.Tx) error {
		fields := contribution.Fields

		// Organization
		if fields.OrganizationID == nil && contribution.OrganizationName != "" {
			orgID, err := repository.names.FindOrCreateOrganization(context, transaction, contribution.OrganizationName)
			if err != nil {
				return err
			}
			fields.OrganizationID = &orgID
		}

		// Location
		if fields.LocationID == nil && contribution.LocationLabel != "" {
			city, province, _ := strings.Cut(contribution.LocationLabel, ",")
			locationID, err := repository.names.FindOrCreateLocation(context, transaction, city, province)
			if err != nil {
				return err
			}
			fields.LocationID = &locationID
		}

		var err error
		if id, err = insertEntry(context, transaction, &fields); err != nil {
			return err
		}

		// Tags
		topicIDs := make([]int, 0, len(contribution.Tags))
		seen := make(map[int]struct{}, len(contribution.Tags))
		for _, tag := range contribution.Tags {
			topicID, err := repository.names.FindOrCreateTopic(context, transaction, tag)
			if err != nil {
				return err
			}
			if _, dup := seen[topicID]; dup {
				continue
			}
			seen[topicID] = struct{}{}
			topicIDs = append(topicIDs, topicID)
		}
		if err := updateJunction(context, transaction, id, topicIDs); err != nil {
			return err
		}

		// Translation
		if contribution.Translation == nil || contribution.Translation.IsBlank() {
			return nil
		}

		translation := *contribution.Translation
		if translation.LanguageID == 0 {
			languageID, err := languageIDByCode(context, transaction, translation.LanguageCode)
			if err != nil {
				return err
			}
			translation.LanguageID = languageID
		}
		return replaceTranslations(context, transaction, id, []Translation{translation})
	})

	return id, err
}

// # Write Helpers

func insertEntry(context context.Context, db postgres.DBTX, f *Fields) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`,
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

	var id int
	err := db.QueryRow(context, query,
		f.Title, f.OrganizationID, f.LocationID, f.Date, f.Summary, f.SourceLink, f.HasPhotos, f.Type,
	).Scan(&id)
	if err != nil {
		return 0, dberr.Wrap(err, "insert_entry")
	}
	return id, nil
}

// lockEntry takes a row lock on the entry for the rest of the transaction.
func lockEntry(context context.Context, transaction pgx.Tx, id int) error {
	query := fmt.Sprintf("SELECT %[1]s FROM %[2]s WHERE %[1]s = $1 FOR UPDATE", schema.PimsMain.ID, schema.PimsMain.Table)

	var locked int
	err := transaction.QueryRow(context, query, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Entry")
	}
	return dberr.Wrap(err, "lock_entry")
}

/*
updateJunction replaces every topic link of an entry.

Existing links are deleted, then the new set is inserted with a single
pgx.Batch. Duplicate ids in topicIDs collapse onto one row.
*/
func updateJunction(context context.Context, transaction pgx.Tx, entryID int, topicIDs []int) error {
	table, idCol, valCol := schema.PimsEntryTopic.Table, schema.PimsEntryTopic.PimsID, schema.PimsEntryTopic.TopicID

	delQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, idCol)
	if _, err := transaction.Exec(context, delQuery, entryID); err != nil {
		return dberr.Wrap(err, "clear_entry_topics")
	}

	if len(topicIDs) == 0 {
		return nil
	}

	insQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING", table, idCol, valCol)
	batch := &pgx.Batch{}
	for _, topicID := range topicIDs {
		batch.Queue(insQuery, entryID, topicID)
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "link_entry_topics")
	}
	return nil
}

// replaceTranslations deletes the entry's translations and inserts the non-blank ones.
func replaceTranslations(context context.Context, transaction pgx.Tx, entryID int, translations []Translation) error {
	t := schema.PimsMainTranslation

	delQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Table, t.PimsID)
	if _, err := transaction.Exec(context, delQuery, entryID); err != nil {
		return dberr.Wrap(err, "clear_entry_translations")
	}

	insQuery := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)",
		t.Table, t.PimsID, t.LanguageID, t.Title, t.Summary, t.SourceLink)

	batch := &pgx.Batch{}
	for _, translation := range translations {
		if translation.IsBlank() {
			continue
		}
		batch.Queue(insQuery, entryID, translation.LanguageID,
			nullIfBlank(translation.Title), nullIfBlank(translation.Summary), translation.SourceLink)
	}

	if batch.Len() == 0 {
		return nil
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "insert_entry_translations")
	}
	return nil
}

func languageIDByCode(context context.Context, db postgres.DBTX, code string) (int, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE lower(%s) = lower($1)", schema.Language.ID, schema.Language.Table, schema.Language.Code)

	var id int
	err := db.QueryRow(context, query, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.Unprocessable("Language is not configured: " + code)
	}
	if err != nil {
		return 0, dberr.Wrap(err, "find_language")
	}
	return id, nil
}

func nullIfBlank(s string) *string {
	if isBlank(s) {
		return nil
	}
	return &s
}
