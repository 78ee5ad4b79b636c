// Package insight serves the pre-aggregated dashboard views of the archive.
//
// Every view is computed by PostgreSQL and cached for a short time. Entry
// writes call [Service.Invalidate] so the dashboards never lag behind an edit
// for longer than one request.
package insight

// Stats are the headline counters of the dashboard.
type Stats struct {
	TotalRecords  int `json:"totalRecords"`
	Organizations int `json:"organizations"`
	Cities        int `json:"cities"`
	Provinces     int `json:"provinces"`
	Topics        int `json:"topics"`
}

// YearCounts maps a four-digit year to the number of entries dated in it.
type YearCounts map[string]int

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type ProvinceCount struct {
	Province string `json:"province"`
	Count    int    `json:"count"`
}

type DecadeCount struct {
	Decade string `json:"decade"`
	Count  int    `json:"count"`
}

type OrganizationCount struct {
	Organization string `json:"organization"`
	Count        int    `json:"count"`
}

// EntryRow is the flattened entry shape used by the dashboard tables.
type EntryRow struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Date             *string `json:"date"`
	Summary          *string `json:"summary"`
	SourceLink       *string `json:"source_link"`
	HasPhotos        bool    `json:"has_photos"`
	Type             *string `json:"type"`
	City             *string `json:"city"`
	Province         *string `json:"province"`
	OrganizationName *string `json:"organization_name"`
}

// View names accepted by the "type" query parameter.
const (
	ViewStats                = "stats"
	ViewEventsByYear         = "events-by-year"
	ViewEventsByMonth        = "events-by-month"
	ViewEventsByTopic        = "events-by-topic"
	ViewEventsByProvince     = "events-by-province"
	ViewEventsByDecade       = "events-by-decade"
	ViewEventsByOrganization = "events-by-organization"
	ViewEntries              = "entries"
)

// Views lists every cacheable view, in the order the dashboards request them.
var Views = []string{
	ViewStats,
	ViewEventsByYear,
	ViewEventsByMonth,
	ViewEventsByTopic,
	ViewEventsByProvince,
	ViewEventsByDecade,
	ViewEventsByOrganization,
	ViewEntries,
}
