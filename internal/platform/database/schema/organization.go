package schema

// OrganizationTable represents the 'organizations' table
type OrganizationTable struct {
	Table string
	ID    string
	Name  string
}

// Organization is the schema definition for organizations
var Organization = OrganizationTable{
	Table: "organizations",
	ID:    "organization_id",
	Name:  "organization_name",
}

func (t OrganizationTable) Columns() []string { return []string{t.ID, t.Name} }
