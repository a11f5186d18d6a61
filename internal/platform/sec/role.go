// Copyright (c) 2026 PMR Atlas. All rights reserved.

package sec

// # User Roles

// UserRole is the authorization level carried in a token.
type UserRole string

const (
	// Full editorial control, including inline edits of published content.
	RoleAdmin UserRole = "admin"

	// May request machine translation of whole documents.
	RoleEditor UserRole = "editor"

	// Read-only access.
	RoleViewer UserRole = "viewer"
)

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}
