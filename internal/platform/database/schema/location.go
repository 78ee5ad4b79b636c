package schema

// LocationTable represents the 'locations' table
type LocationTable struct {
	Table    string
	ID       string
	City     string
	Province string
}

// Location is the schema definition for locations
var Location = LocationTable{
	Table:    "locations",
	ID:       "location_id",
	City:     "city",
	Province: "province",
}

func (t LocationTable) Columns() []string { return []string{t.ID, t.City, t.Province} }
