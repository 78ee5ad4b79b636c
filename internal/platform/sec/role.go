// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package sec

// # Account Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Schema setup, CSV import and deletions
	RoleAdmin UserRole = "admin"

	// Creates and edits archive entries
	RoleEditor UserRole = "editor"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() > 0 && r.level() >= target.level()
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleEditor:
		return 10
	default:
		return 0
	}
}
