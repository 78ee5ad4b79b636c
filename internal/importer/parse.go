// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/k3a/html2text"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/pkg/convert"
	"github.com/pims-archive/pims/pkg/normalize"
)

// candidateDelimiters are tried in order; ties go to the earlier one.
var candidateDelimiters = []rune{',', ';', '\t'}

// headerAliases maps the column names of the raw spreadsheet export onto the
// canonical ones. A canonical column present in the same file wins.
var headerAliases = map[string]string{
	"city2":     ColumnCity,
	"province2": ColumnProvince,
	"date(s)":   ColumnDate,
}

/*
Parse reads a CSV export into rows.

Description: Rows without a title are dropped and counted in skipped. Dates
that cannot be parsed are stored as NULL and the raw cell is kept in
[Row.DroppedDate]. Cells holding "nan" (pandas' missing value) are treated as
empty. Summaries lose HTML markup and entities, and an organization written as
a list literal (['Name']) keeps its first name.

Returns:
  - []Row: Rows in file order
  - int: Rows skipped for a blank title
  - error: VALIDATION_ERROR for an empty file, a header without Title, or malformed CSV
*/
func Parse(r io.Reader) ([]Row, int, error) {
	buffered := bufio.NewReader(r)

	header, err := buffered.Peek(buffered.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, 0, fmt.Errorf("importer: read header: %w", err)
	}
	if len(bytes.TrimSpace(header)) == 0 {
		return nil, 0, apperr.ValidationError("The CSV file is empty")
	}

	reader := csv.NewReader(buffered)
	reader.Comma = detectDelimiter(firstLine(header))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	names, err := reader.Read()
	if err != nil {
		return nil, 0, apperr.ValidationError("Unreadable CSV header").WithCause(err)
	}

	columns := mapColumns(names)
	if _, ok := columns[ColumnTitle]; !ok {
		return nil, 0, apperr.ValidationError("The CSV header has no Title column")
	}

	var (
		rows    []Row
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, apperr.ValidationError("Malformed CSV").WithCause(err)
		}

		line, _ := reader.FieldPos(0)
		row := parseRecord(record, columns, line)
		if row.Title == "" {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

// mapColumns indexes header names case-insensitively, resolving [headerAliases].
// The first occurrence of a name wins.
func mapColumns(names []string) map[string]int {
	columns := make(map[string]int, len(names))
	aliased := make(map[string]int)

	for i, name := range names {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := aliased[canonical]; !dup {
				aliased[canonical] = i
			}
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	for key, i := range aliased {
		if _, ok := columns[key]; !ok {
			columns[key] = i
		}
	}
	return columns
}

func parseRecord(record []string, columns map[string]int, line int) Row {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		value := strings.TrimSpace(record[i])
		if strings.EqualFold(value, "nan") {
			return ""
		}
		return value
	}

	row := Row{
		Line:             line,
		Title:            normalize.Name(cell(ColumnTitle)),
		OrganizationName: normalize.Name(CleanOrganization(cell(ColumnOrganizationName))),
		City:             normalize.Name(cell(ColumnCity)),
		Province:         normalize.Name(cell(ColumnProvince)),
		Summary:          CleanSummary(cell(ColumnSummary)),
		SourceLink:       cell(ColumnSourceLink),
		HasPhotos:        parseFlag(cell(ColumnHasPhotos)),
		Type:             cell(ColumnEventType),
		Topics:           ParseTopics(cell(ColumnTopics)),
	}

	// Unparseable dates are kept as NULL rather than failing the import.
	raw := cell(ColumnDate)
	date, err := convert.ToDate(raw)
	if err != nil {
		row.DroppedDate = raw
	} else {
		row.Date = date
	}

	return row
}

/*
CleanSummary strips HTML markup from a summary cell, decodes entities such as
"&#58;" and collapses whitespace.

	CleanSummary("<p>Rally&#58;  <b>City Hall</b></p>") // "Rally: City Hall"
*/
func CleanSummary(cell string) string {
	if strings.ContainsAny(cell, "<&") {
		cell = html2text.HTML2Text(cell)
	}
	return strings.Join(strings.Fields(cell), " ")
}

// CleanOrganization unwraps an organization exported as a list literal,
// keeping the first name: "['Gay Liberation Front']" becomes
// "Gay Liberation Front". Other cells are returned unchanged.
func CleanOrganization(cell string) string {
	if !strings.HasPrefix(cell, "[") {
		return cell
	}
	items := listItems(cell)
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

/*
ParseTopics splits a topics cell.

Both list literals and plain lists are accepted:

	ParseTopics(`['Pride', "Parade"]`) // ["Pride", "Parade"]
	ParseTopics("Pride, Parade")       // ["Pride", "Parade"]
*/
func ParseTopics(cell string) []string {
	cell = strings.TrimSpace(cell)

	var parts []string
	if strings.HasPrefix(cell, "[") {
		parts = listItems(cell)
	} else {
		parts = strings.Split(cell, ",")
	}

	var topics []string
	for _, part := range parts {
		name := normalize.Name(strings.Trim(strings.TrimSpace(part), `"'`))
		if name != "" {
			topics = append(topics, name)
		}
	}
	return topics
}

// listItems splits a list literal such as ['A, B', "C"] into its items. A
// quote opens only at the start of an item, so commas and apostrophes inside
// quoted names survive.
func listItems(cell string) []string {
	body := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(cell), "["), "]")

	var (
		items   []string
		current strings.Builder
		quote   rune
		atStart = true
	)
	for _, r := range body {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == ',':
			items = append(items, current.String())
			current.Reset()
			atStart = true
		case atStart && unicode.IsSpace(r):
		case atStart && (r == '\'' || r == '"'):
			quote = r
			atStart = false
		default:
			current.WriteRune(r)
			atStart = false
		}
	}
	items = append(items, current.String())

	kept := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

// parseFlag accepts the checkbox values plus the spreadsheet spellings yes/y.
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true
	default:
		return convert.ToFlag(s)
	}
}

// detectDelimiter picks the candidate occurring most often in the header line.
func detectDelimiter(line string) rune {
	best, bestCount := candidateDelimiters[0], 0
	for _, delimiter := range candidateDelimiters {
		if n := strings.Count(line, string(delimiter)); n > bestCount {
			best, bestCount = delimiter, n
		}
	}
	return best
}

func firstLine(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
