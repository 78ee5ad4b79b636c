// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package entry

import "context"

// # Entry Data Access

// Repository defines the persistence contract for archive entries.
//
// Write methods own their transaction: a returned error means nothing was stored.
type Repository interface {

	// ## Reads

	/*
		List returns a filtered, sorted page of entries and the total match count.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Entry: Entries with topics attached
		  - int: Total rows matching the filter
		  - error: Database failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error)

	// FindByID returns one entry with its topics and every translation.
	// languageID, when set, localizes title, summary, source link and topic names.
	FindByID(context context.Context, id int, languageID *int) (*Entry, error)

	// Related returns entries sharing the organization, the location or a topic
	// with entry id, most recent first. ErrNotFound when id does not exist.
	Related(context context.Context, id int, languageID *int, limit int) ([]*Entry, error)

	// ## Writes

	// Create inserts an entry with its topic links and non-blank translations.
	Create(context context.Context, input *Input) (int, error)

	// Update replaces the entry's columns, topics and translations.
	Update(context context.Context, id int, input *Input) error

	// Delete removes the entry, its topic links and its translations.
	Delete(context context.Context, id int) error

	/*
		CreateContribution stores a public submission.

		Description: New organization, location and topic names are created on
		first use; existing ones are reused case-insensitively. The optional
		translation is stored when it is not blank.

		Returns:
		  - int: The new entry id
		  - error: Validation or database failures
	*/
	CreateContribution(context context.Context, contribution *Contribution) (int, error)
}

// Invalidator drops derived data (the dashboard cache) after a successful write.
type Invalidator interface {
	Invalidate(context context.Context) error
}
