// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer

import (
	"strings"
	"unicode/utf8"
)

type rowKey struct {
	title, organization, city, province, date string
}

func keyOf(row Row) rowKey {
	date := ""
	if row.Date != nil {
		date = row.Date.Format("2006-01-02")
	}
	return rowKey{
		title:        strings.ToLower(row.Title),
		organization: strings.ToLower(row.OrganizationName),
		city:         strings.ToLower(row.City),
		province:     strings.ToLower(row.Province),
		date:         date,
	}
}

/*
Dedupe collapses rows describing the same event.

Rows match on title, organization, city, province and date (names compared
case-insensitively). The surviving row is the one with the longest non-empty
summary; on a tie the earlier row wins. Topics of every duplicate are merged
into the survivor.

Returns:
  - []Row: One row per event, in order of first appearance
  - int: Number of rows folded into another
*/
func Dedupe(rows []Row) ([]Row, int) {
	index := make(map[rowKey]int, len(rows))
	out := make([]Row, 0, len(rows))
	duplicates := 0

	for _, row := range rows {
		key := keyOf(row)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, row)
			continue
		}

		duplicates++
		kept := &out[i]
		topics := mergeTopics(kept.Topics, row.Topics)

		if utf8.RuneCountInString(row.Summary) > utf8.RuneCountInString(kept.Summary) {
			*kept = row
		}
		kept.Topics = topics
	}

	return out, duplicates
}

// mergeTopics appends the names of b missing from a, ignoring case.
func mergeTopics(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
