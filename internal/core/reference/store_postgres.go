// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package reference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pims-archive/pims/internal/platform/database/schema"
	"github.com/pims-archive/pims/internal/platform/dberr"
	"github.com/pims-archive/pims/internal/platform/postgres"
	"github.com/pims-archive/pims/internal/platform/validate"
	"github.com/pims-archive/pims/pkg/normalize"
)

// PostgresRepository implements [Repository] using a pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a fully wired postgres implementation.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var languageSelect = fmt.Sprintf(`SELECT %s, %s, %s FROM %s`,
	schema.Language.ID, schema.Language.Name, schema.Language.Code, schema.Language.Table)

/*
ListLanguages retrieves all languages.

Parameters:
  - context: context.Context

Returns:
  - []*Language: Languages ordered by id
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListLanguages(context context.Context) ([]*Language, error) {
	rows, err := repository.db.Query(context, languageSelect+fmt.Sprintf(" ORDER BY %s ASC", schema.Language.ID))
	if err != nil {
		return nil, dberr.Wrap(err, "list_languages")
	}
	defer rows.Close()

	langs := make([]*Language, 0, 2)
	for rows.Next() {
		l := &Language{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Code); err != nil {
			return nil, dberr.Wrap(err, "scan_language")
		}
		langs = append(langs, l)
	}

	return langs, dberr.Wrap(rows.Err(), "list_languages")
}

// GetLanguageByCode performs a case-insensitive lookup on language_code.
func (repository *PostgresRepository) GetLanguageByCode(context context.Context, code string) (*Language, error) {
	query := languageSelect + fmt.Sprintf(" WHERE lower(%s) = lower($1)", schema.Language.Code)

	l := &Language{}
	if err := repository.db.QueryRow(context, query, code).Scan(&l.ID, &l.Name, &l.Code); err != nil {
		return nil, dberr.Wrap(err, "get_language_by_code")
	}
	return l, nil
}

// GetLanguageByID performs a direct primary key lookup.
func (repository *PostgresRepository) GetLanguageByID(context context.Context, id int) (*Language, error) {
	query := languageSelect + fmt.Sprintf(" WHERE %s = $1", schema.Language.ID)

	l := &Language{}
	if err := repository.db.QueryRow(context, query, id).Scan(&l.ID, &l.Name, &l.Code); err != nil {
		return nil, dberr.Wrap(err, "get_language_by_id")
	}
	return l, nil
}

/*
ListTopics retrieves every topic with its translations.

Description: The localized name comes from a LEFT JOIN on the requested
language, and the full translation list is aggregated with json_agg so the
whole catalogue loads in one round-trip.

Parameters:
  - context: context.Context
  - languageID: *int

Returns:
  - []*Topic: Topics ordered by localized name
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListTopics(context context.Context, languageID *int) ([]*Topic, error) {
	query := fmt.Sprintf(`
		SELECT
			t.%[1]s,
			t.%[2]s,
			COALESCE(loc.%[5]s, t.%[2]s) AS localized,
			COALESCE((
				SELECT json_agg(json_build_object('language_id', l.%[7]s, 'language_code', l.%[8]s, 'name', tt.%[5]s) ORDER BY l.%[7]s)
				FROM %[3]s tt
				JOIN %[6]s l ON l.%[7]s = tt.%[9]s
				WHERE tt.%[4]s = t.%[1]s
			), '[]') AS translations
		FROM %[10]s t
		LEFT JOIN %[3]s loc ON loc.%[4]s = t.%[1]s AND loc.%[9]s = $1
		ORDER BY localized ASC, t.%[1]s ASC
	`,
		schema.Topic.ID,                         // 1
		schema.Topic.Name,                       // 2
		schema.TopicTranslation.Table,           // 3
		schema.TopicTranslation.TopicID,         // 4
		schema.TopicTranslation.TranslatedTopic, // 5
		schema.Language.Table,                   // 6
		schema.Language.ID,                      // 7
		schema.Language.Code,                    // 8
		schema.TopicTranslation.LanguageID,      // 9
		schema.Topic.Table,                      // 10
	)

	rows, err := repository.db.Query(context, query, languageID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_topics")
	}
	defer rows.Close()

	topics := make([]*Topic, 0)
	for rows.Next() {
		t := &Topic{}
		var translationsJSON []byte
		if err := rows.Scan(&t.ID, &t.CanonicalName, &t.Name, &translationsJSON); err != nil {
			return nil, dberr.Wrap(err, "scan_topic")
		}
		if err := json.Unmarshal(translationsJSON, &t.Translations); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal topic translations: %w", err)
		}
		topics = append(topics, t)
	}

	return topics, dberr.Wrap(rows.Err(), "list_topics")
}

// ListOrganizations retrieves every organization ordered by name.
func (repository *PostgresRepository) ListOrganizations(context context.Context) ([]*Organization, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s ORDER BY %s ASC`,
		schema.Organization.ID, schema.Organization.Name, schema.Organization.Table, schema.Organization.Name)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_organizations")
	}
	defer rows.Close()

	organizations := make([]*Organization, 0)
	for rows.Next() {
		o := &Organization{}
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, dberr.Wrap(err, "scan_organization")
		}
		organizations = append(organizations, o)
	}

	return organizations, dberr.Wrap(rows.Err(), "list_organizations")
}

// ListLocations retrieves every location ordered by province then city.
func (repository *PostgresRepository) ListLocations(context context.Context) ([]*Location, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s ASC, %s ASC`,
		schema.Location.ID, schema.Location.City, schema.Location.Province, schema.Location.Table,
		schema.Location.Province, schema.Location.City)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_locations")
	}
	defer rows.Close()

	locations := make([]*Location, 0)
	for rows.Next() {
		l := &Location{}
		if err := rows.Scan(&l.ID, &l.City, &l.Province); err != nil {
			return nil, dberr.Wrap(err, "scan_location")
		}
		locations = append(locations, l)
	}

	return locations, dberr.Wrap(rows.Err(), "list_locations")
}

// # Find-or-create

/*
FindOrCreateTopic returns the id of the topic with this name, creating it if needed.

Description: A single statement looks the name up case-insensitively and
otherwise inserts it. The unique index on lower(topic_name) plus ON CONFLICT makes
two concurrent submissions of the same new name converge on one row, whatever
their casing. The first spelling stored is kept.

Parameters:
  - context: context.Context
  - db: postgres.DBTX
  - name: string

Returns:
  - int: Topic id
  - error: Validation or database errors
*/
func (repository *PostgresRepository) FindOrCreateTopic(context context.Context, db postgres.DBTX, name string) (int, error) {
	return findOrCreateByName(context, db, schema.Topic.Table, schema.Topic.ID, schema.Topic.Name, name, "topic")
}

// FindOrCreateOrganization resolves an organization name the same way as [PostgresRepository.FindOrCreateTopic].
func (repository *PostgresRepository) FindOrCreateOrganization(context context.Context, db postgres.DBTX, name string) (int, error) {
	return findOrCreateByName(context, db, schema.Organization.Table, schema.Organization.ID, schema.Organization.Name, name, "organization")
}

// FindOrCreateLocation resolves a (city, province) pair against the case-insensitive composite unique index.
func (repository *PostgresRepository) FindOrCreateLocation(context context.Context, db postgres.DBTX, city, province string) (int, error) {
	city, province = normalize.Name(city), normalize.Name(province)
	if city == "" || province == "" {
		return 0, validate.RequiredError("location", "City and province are both required")
	}

	query := fmt.Sprintf(`
		WITH existing AS (
			SELECT %[2]s AS id FROM %[1]s
			WHERE lower(%[3]s) = lower($1) AND lower(%[4]s) = lower($2)
			ORDER BY %[2]s
			LIMIT 1
		), inserted AS (
			INSERT INTO %[1]s (%[3]s, %[4]s)
			SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM existing)
			ON CONFLICT ((lower(%[3]s)), (lower(%[4]s))) DO UPDATE SET %[3]s = %[1]s.%[3]s
			RETURNING %[2]s AS id
		)
		SELECT id FROM existing
		UNION ALL
		SELECT id FROM inserted
		LIMIT 1
	`, schema.Location.Table, schema.Location.ID, schema.Location.City, schema.Location.Province)

	var id int
	if err := db.QueryRow(context, query, city, province).Scan(&id); err != nil {
		return 0, dberr.Wrap(err, "find_or_create_location")
	}
	return id, nil
}

// findOrCreateByName is the shared single-column upsert behind topics and organizations.
func findOrCreateByName(context context.Context, db postgres.DBTX, table, idCol, nameCol, name, resource string) (int, error) {
	name = normalize.Name(name)
	if name == "" {
		return 0, validate.RequiredError(resource, "Name must not be blank")
	}

	query := fmt.Sprintf(`
		WITH existing AS (
			SELECT %[2]s AS id FROM %[1]s
			WHERE lower(%[3]s) = lower($1)
			ORDER BY %[2]s
			LIMIT 1
		), inserted AS (
			INSERT INTO %[1]s (%[3]s)
			SELECT $1 WHERE NOT EXISTS (SELECT 1 FROM existing)
			ON CONFLICT ((lower(%[3]s))) DO UPDATE SET %[3]s = %[1]s.%[3]s
			RETURNING %[2]s AS id
		)
		SELECT id FROM existing
		UNION ALL
		SELECT id FROM inserted
		LIMIT 1
	`, table, idCol, nameCol)

	var id int
	if err := db.QueryRow(context, query, name).Scan(&id); err != nil {
		return 0, dberr.Wrap(err, "find_or_create_"+resource)
	}
	return id, nil
}
