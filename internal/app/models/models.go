package models

// RoleType represents the role of a user in the system
type RoleType string

const (
	RoleApplicant  RoleType = "APPLICANT"
	RoleAdmin      RoleType = "ADMIN"
	RoleSuperAdmin RoleType = "SUPERADMIN"
)

// IsStaff reports whether the role belongs to an admissions staff member.
func (r RoleType) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Actor identifies the authenticated user performing an operation.
// It is threaded explicitly through every service call; there is no
// ambient "current user" state below the HTTP layer.
type Actor struct {
	ID   int64
	Role RoleType
}

// IsStaff reports whether the actor is an admin or superadmin.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// IsSuperAdmin reports whether the actor bypasses per-case ownership checks.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}
