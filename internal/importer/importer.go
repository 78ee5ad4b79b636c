// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package importer loads archive entries from a CSV export.

The expected header is:

	ID, Title, Organization Name, City, Province, Date, Summary, Source Link, Has Photos, Event Type, Topics

Only Title is mandatory. The raw export's City2, Province2 and Date(s) headers
are accepted as aliases. The delimiter (comma, semicolon or tab) is detected from
the header line. Rows describing the same event (same title, organization,
location and date) collapse onto one entry, keeping the longest summary.

An import is all or nothing: every row is applied inside one transaction.
*/
package importer

import "time"

// Row is one parsed CSV record.
type Row struct {
	// Line is the 1-based line number in the file, for error messages.
	Line             int
	Title            string
	OrganizationName string
	City             string
	Province         string
	Date             *time.Time
	// DroppedDate holds the date cell when it could not be parsed.
	DroppedDate string
	Summary     string
	SourceLink  string
	HasPhotos   bool
	Type        string
	Topics      []string
}

// Report summarizes an import.
type Report struct {
	RowsRead        int `json:"rows_read"`
	RowsSkipped     int `json:"rows_skipped"`
	EntriesInserted int `json:"entries_inserted"`
	EntriesUpdated  int `json:"entries_updated"`
	TopicsLinked    int `json:"topics_linked"`
	DatesDropped    int `json:"dates_dropped"`
}

// Column names recognized in the header, compared case-insensitively.
const (
	ColumnID               = "id"
	ColumnTitle            = "title"
	ColumnOrganizationName = "organization name"
	ColumnCity             = "city"
	ColumnProvince         = "province"
	ColumnDate             = "date"
	ColumnSummary          = "summary"
	ColumnSourceLink       = "source link"
	ColumnHasPhotos        = "has photos"
	ColumnEventType        = "event type"
	ColumnTopics           = "topics"
)
