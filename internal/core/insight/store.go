// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package insight

import "context"

// Repository runs the dashboard aggregates.
type Repository interface {
	// Stats returns the zero value alongside any error.
	Stats(context context.Context) (Stats, error)

	// CountByYear counts dated entries per calendar year.
	CountByYear(context context.Context) (map[int]int, error)

	// CountByMonth counts dated entries per month of the year (1..12). Months
	// without entries are absent.
	CountByMonth(context context.Context) (map[int]int, error)

	CountByTopic(context context.Context) ([]TopicCount, error)
	CountByProvince(context context.Context) ([]ProvinceCount, error)

	// CountByDecade counts dated entries per decade, keyed by its first year.
	CountByDecade(context context.Context) (map[int]int, error)

	CountByOrganization(context context.Context) ([]OrganizationCount, error)
	Entries(context context.Context) ([]EntryRow, error)
}
