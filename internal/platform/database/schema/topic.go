package schema

// TopicTable represents the 'topic' table
type TopicTable struct {
	Table string
	ID    string
	Name  string
}

// Topic is the schema definition for topic
var Topic = TopicTable{
	Table: "topic",
	ID:    "topic_id",
	Name:  "topic_name",
}

func (t TopicTable) Columns() []string { return []string{t.ID, t.Name} }

// TopicTranslationTable represents the 'topic_translations' table
type TopicTranslationTable struct {
	Table           string
	ID              string
	TopicID         string
	LanguageID      string
	TranslatedTopic string
}

// TopicTranslation is the schema definition for topic_translations
var TopicTranslation = TopicTranslationTable{
	Table:           "topic_translations",
	ID:              "id",
	TopicID:         "topic_id",
	LanguageID:      "language_id",
	TranslatedTopic: "translated_topic",
}

func (t TopicTranslationTable) Columns() []string {
	return []string{t.ID, t.TopicID, t.LanguageID, t.TranslatedTopic}
}
