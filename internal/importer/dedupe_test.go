// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pims-archive/pims/internal/importer"
)

func TestDedupe_LongestSummaryWins(t *testing.T) {
	day := time.Date(1981, 6, 28, 0, 0, 0, 0, time.UTC)

	rows := []importer.Row{
		{Line: 2, Title: "Pride Day", City: "Toronto", Province: "Ontario", Date: &day, Summary: "short", Topics: []string{"Pride"}},
		{Line: 3, Title: "Vigil", Summary: "unrelated"},
		{Line: 4, Title: "pride day", City: "TORONTO", Province: "ontario", Date: &day, Summary: "a much longer summary", Topics: []string{"pride", "Parade"}},
		{Line: 5, Title: "Pride Day", City: "Toronto", Province: "Ontario", Date: &day, Summary: "same length summary!!", Topics: []string{"Health"}},
	}

	out, duplicates := importer.Dedupe(rows)

	assert.Equal(t, 2, duplicates)
	require.Len(t, out, 2)

	// 1. Survivor keeps first-appearance order
	assert.Equal(t, 4, out[0].Line)
	assert.Equal(t, "a much longer summary", out[0].Summary)
	assert.Equal(t, []string{"Pride", "Parade", "Health"}, out[0].Topics)

	// 2. Unrelated rows pass through
	assert.Equal(t, "Vigil", out[1].Title)
}

func TestDedupe_DateIsPartOfTheKey(t *testing.T) {
	first := time.Date(1981, 6, 28, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(1, 0, 0)

	rows := []importer.Row{
		{Title: "Pride Day", Date: &first},
		{Title: "Pride Day", Date: &second},
		{Title: "Pride Day"},
	}

	out, duplicates := importer.Dedupe(rows)
	assert.Zero(t, duplicates)
	assert.Len(t, out, 3)
}

func TestDedupe_TieKeepsEarlierRow(t *testing.T) {
	rows := []importer.Row{
		{Line: 2, Title: "March", Summary: "abc", SourceLink: "https://a.example"},
		{Line: 3, Title: "March", Summary: "xyz", SourceLink: "https://b.example"},
	}

	out, duplicates := importer.Dedupe(rows)
	assert.Equal(t, 1, duplicates)
	require.Len(t, out, 1)
	assert.Equal(t, "https://a.example", out[0].SourceLink)
}
