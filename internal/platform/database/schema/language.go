package schema

// LanguageTable represents the 'languages' table
type LanguageTable struct {
	Table string
	ID    string
	Name  string
	Code  string
}

// Language is the schema definition for languages
var Language = LanguageTable{
	Table: "languages",
	ID:    "language_id",
	Name:  "language_name",
	Code:  "language_code",
}

func (t LanguageTable) Columns() []string { return []string{t.ID, t.Name, t.Code} }
