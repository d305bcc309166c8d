// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including role changes
	RoleAdmin UserRole = "admin"

	// Can publish and manage their own courses and videos
	RoleInstructor UserRole = "instructor"

	// Default role for standard registered learners
	RoleUser UserRole = "user"
)

// IsValid reports whether r is one of the fixed roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleUser:
		return true
	}
	return false
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleInstructor:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// Roles lists every assignable role, lowest privilege first.
func Roles() []string {
	return []string{string(RoleUser), string(RoleInstructor), string(RoleAdmin)}
}
