package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for an admin-panel account.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	IsActive          bool
	EmailVerified     bool
	PasswordChangedAt time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
