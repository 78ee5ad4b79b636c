/*
Package entry manages the archive records of the PIMS archive.

An entry (one row of pims_main) is a dated event or article with an optional
organization and location, a set of topics and zero or more translations. This
package owns listing and search, the admin CRUD actions and the public
contribution flow.

# Write Model

Every write runs in a single transaction: the entry row, its topic links and its
translations are committed together or not at all. Topic and translation sets are
replaced wholesale on update.
*/
package entry

import "time"

// # Entry Domain

// Entry is a single archive record with its joined provenance and topics.
//
// Title, Summary and SourceLink are localized when a translation exists for the
// requested language.
type Entry struct {
	ID               int           `json:"id"`
	Title            string        `json:"title"`
	OrganizationID   *int          `json:"organization_id"`
	LocationID       *int          `json:"location_id"`
	Date             *string       `json:"date"`
	Summary          string        `json:"summary"`
	SourceLink       *string       `json:"source_link"`
	HasPhotos        bool          `json:"has_photos"`
	Type             *string       `json:"type"`
	OrganizationName *string       `json:"organization_name"`
	City             *string       `json:"city"`
	Province         *string       `json:"province"`
	Topics           []TopicRef    `json:"topics"`
	Translations     []Translation `json:"translations,omitempty"`
}

// TopicRef is a topic attached to an entry.
type TopicRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Translation is the alternate-language rendering of an entry.
type Translation struct {
	LanguageID   int     `json:"language_id"`
	LanguageCode string  `json:"language_code,omitempty"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	SourceLink   *string `json:"source_link,omitempty"`
}

// IsBlank reports whether the translation carries neither a title nor a summary.
// Blank translations are dropped on write.
func (t Translation) IsBlank() bool {
	return isBlank(t.Title) && isBlank(t.Summary)
}

// # Write Models

// Fields are the scalar columns of pims_main as accepted on write.
type Fields struct {
	Title          string
	Date           *time.Time
	OrganizationID *int
	LocationID     *int
	Summary        *string
	SourceLink     *string
	HasPhotos      bool
	Type           *string
}

// Input is a complete admin write: the entry, its topic ids and its translations.
type Input struct {
	Fields
	TopicIDs     []int
	Translations []Translation
}

// Contribution is a public submission.
//
// The organization and location may be given by id or by name; names are
// resolved with find-or-create. Tags are topic names.
type Contribution struct {
	Fields
	OrganizationName string
	LocationLabel    string
	Tags             []string
	Translation      *Translation
}

// # Search

// Sort selects the ordering of [Service.ListEntries].
type Sort string

const (
	SortDateDesc  Sort = "date_desc"
	SortDateAsc   Sort = "date_asc"
	SortTitleAsc  Sort = "title_asc"
	SortTitleDesc Sort = "title_desc"
)

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	Query          string
	OrganizationID *int
	Organization   string
	LocationID     *int
	City           string
	Province       string
	StartDate      *time.Time
	EndDate        *time.Time
	DecadeStart    *int
	TopicID        *int
	Topics         []string
	HasPhotos      *bool
	Type           string
	Sort           Sort
	LanguageID     *int
}

// # Field Identifiers

const (
	FieldTitle            = "title"
	FieldDate             = "date"
	FieldOrganizationID   = "organization_id"
	FieldOrganizationName = "organization_name"
	FieldLocationID       = "location_id"
	FieldLocation         = "location"
	FieldSummary          = "summary"
	FieldSourceLink       = "source_link"
	FieldHasPhotos        = "has_photos"
	FieldType             = "type"
	FieldTopics           = "topics"
	FieldTags             = "tags"
	FieldTranslations     = "translations"
	FieldTitleFR          = "title_fr"
	FieldSummaryFR        = "summary_fr"
	FieldQuery            = "q"
	FieldTopicID          = "topic_id"
	FieldTopic            = "topic"
	FieldStartDate        = "start_date"
	FieldEndDate          = "end_date"
	FieldDecade           = "decade"
	FieldSort             = "sort"
	FieldLang             = "lang"
	FieldLimit            = "limit"
)

// Limits shared by validation and the schema.
const (
	MaxTitleLength = 255
	MaxNameLength  = 255

	DefaultRelatedLimit = 5
	MaxRelatedLimit     = 20

	// ContributionLanguage is the language of the optional translated title and
	// summary on the contribution form.
	ContributionLanguage = "fr"
)
