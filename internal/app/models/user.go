package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"applicant@example.com"`
	Password    string     `json:"-" db:"password"` // Hashed password, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name" example:"John"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"APPLICANT"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns the user's full name, or a generic office label when
// the name fields are empty. Used for "in communication with X" messages and
// staff-originated chat notifications.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "Admissions Office"
	}
	return name
}
