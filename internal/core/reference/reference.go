/*
Package reference manages the shared taxonomies of the PIMS archive.

It handles the retrieval and find-or-create of the reference entities that
archive entries point at, so that names stay unique and consistent whether they
arrive from the admin form, a public contribution or a CSV import.

# Core Responsibility

  - Localization: Supported [Language] rows (English, French) and their codes.
  - Taxonomy: [Topic] names with per-language translations.
  - Provenance: [Organization] and [Location] ("City, Province") catalogues.
*/
package reference

// # Language Domain

// Language represents a language entries and topics can be translated into.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// # Topic Domain

// Topic is a subject label attached to entries (e.g. "Pride", "Legal Rights").
//
// Name is localized when a translation exists for the requested language;
// CanonicalName always holds the stored topic_name.
type Topic struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	CanonicalName string             `json:"canonical_name"`
	Translations  []TopicTranslation `json:"translations"`
}

// TopicTranslation is the name of a topic in one language.
type TopicTranslation struct {
	LanguageID   int    `json:"language_id"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name"`
}

// # Provenance Domain

// Organization is the body that ran or documented an event.
type Organization struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Location is a Canadian city and its province or territory.
type Location struct {
	ID       int    `json:"id"`
	City     string `json:"city"`
	Province string `json:"province"`
}

// Label renders the "City, Province" form used by search filters.
func (l Location) Label() string {
	return l.City + ", " + l.Province
}

// # Field Identifiers

const (
	FieldLang = "lang"
	FieldName = "name"
)
