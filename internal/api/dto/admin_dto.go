package dto

import "github.com/spec-kit/admin-service/internal/domain"

// AdminCreateUserRequest payload for admin-provisioned accounts.
type AdminCreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AdminUpdateUserRequest payload for profile edits; nil fields are left
// untouched.
type AdminUpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// RoleChangeRequest payload for role changes.
type RoleChangeRequest struct {
	Role domain.Role `json:"role"`
}
