// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package reference

import (
	"context"

	"github.com/pims-archive/pims/internal/platform/postgres"
)

// # Reference Data Access

// Repository defines the data access contract for reference data.
type Repository interface {

	// ## Language Data Access

	// ListLanguages retrieves all languages ordered by id.
	ListLanguages(context context.Context) ([]*Language, error)

	/*
		GetLanguageByCode fetches a single language by its code ("en", "fr").

		Returns:
		  - *Language: The hydrated language
		  - error: ErrNotFound if missing
	*/
	GetLanguageByCode(context context.Context, code string) (*Language, error)

	// GetLanguageByID fetches a single language by its primary key.
	GetLanguageByID(context context.Context, id int) (*Language, error)

	// ## Topic Data Access

	/*
		ListTopics retrieves every topic with its translations.

		Parameters:
		  - context: context.Context
		  - languageID: *int (nil keeps canonical names)

		Returns:
		  - []*Topic: Topics ordered by localized name
		  - error: Database retrieval failures
	*/
	ListTopics(context context.Context, languageID *int) ([]*Topic, error)

	// ## Provenance Data Access

	// ListOrganizations retrieves every organization ordered by name.
	ListOrganizations(context context.Context) ([]*Organization, error)

	// ListLocations retrieves every location ordered by province then city.
	ListLocations(context context.Context) ([]*Location, error)

	NameResolver
}

// NameResolver finds or creates reference rows by normalized name inside the
// caller's transaction. Entry writes and the CSV importer depend on it.
type NameResolver interface {

	/*
		FindOrCreateTopic returns the id of the topic with this name, creating it if needed.

		Parameters:
		  - context: context.Context
		  - db: postgres.DBTX (usually the caller's pgx.Tx)
		  - name: string (normalized before lookup)

		Returns:
		  - int: Topic id
		  - error: Validation error for blank names, database failures
	*/
	FindOrCreateTopic(context context.Context, db postgres.DBTX, name string) (int, error)

	// FindOrCreateOrganization is the organization counterpart of FindOrCreateTopic.
	FindOrCreateOrganization(context context.Context, db postgres.DBTX, name string) (int, error)

	// FindOrCreateLocation resolves a (city, province) pair.
	FindOrCreateLocation(context context.Context, db postgres.DBTX, city, province string) (int, error)
}
