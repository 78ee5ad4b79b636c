package schema

// PimsMainTable represents the 'pims_main' table, one row per archive entry
type PimsMainTable struct {
	Table          string
	ID             string
	Title          string
	OrganizationID string
	LocationID     string
	Date           string
	Summary        string
	SourceLink     string
	HasPhotos      string
	Type           string
}

// PimsMain is the schema definition for pims_main
var PimsMain = PimsMainTable{
	Table:          "pims_main",
	ID:             "id",
	Title:          "title",
	OrganizationID: "organization_id",
	LocationID:     "location_id",
	Date:           "date",
	Summary:        "summary",
	SourceLink:     "source_link",
	HasPhotos:      "has_photos",
	Type:           "type",
}

func (t PimsMainTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.OrganizationID, t.LocationID, t.Date,
		t.Summary, t.SourceLink, t.HasPhotos, t.Type,
	}
}

// PimsMainTranslationTable represents the 'pims_main_translations' table
type PimsMainTranslationTable struct {
	Table      string
	ID         string
	PimsID     string
	LanguageID string
	Title      string
	Summary    string
	SourceLink string
}

// PimsMainTranslation is the schema definition for pims_main_translations
var PimsMainTranslation = PimsMainTranslationTable{
	Table:      "pims_main_translations",
	ID:         "id",
	PimsID:     "pims_id",
	LanguageID: "language_id",
	Title:      "title",
	Summary:    "summary",
	SourceLink: "source_link",
}

func (t PimsMainTranslationTable) Columns() []string {
	return []string{t.ID, t.PimsID, t.LanguageID, t.Title, t.Summary, t.SourceLink}
}

// PimsEntryTopicTable represents the 'pims_entry_topic' junction table
type PimsEntryTopicTable struct {
	Table   string
	PimsID  string
	TopicID string
}

// PimsEntryTopic is the schema definition for pims_entry_topic
var PimsEntryTopic = PimsEntryTopicTable{
	Table:   "pims_entry_topic",
	PimsID:  "pims_id",
	TopicID: "topic_id",
}

func (t PimsEntryTopicTable) Columns() []string { return []string{t.PimsID, t.TopicID} }
