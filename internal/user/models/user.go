package models

import (
	"time"

	"github.com/google/uuid"

	"taskhub/internal/rbac"
)

// User is a member of exactly one organization holding exactly one role.
// The password hash never leaves the service layer.
type User struct {
	ID             uuid.UUID     `json:"id"`
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	PasswordHash   string        `json:"-"`
	IsActive       bool          `json:"isActive"`
	OrganizationID uuid.UUID     `json:"organizationId"`
	Role           rbac.RoleType `json:"role"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// CreateUserRequest is the admin-facing creation payload.
type CreateUserRequest struct {
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	Password       string        `json:"password"`
	OrganizationID string        `json:"organizationId"`
	Role           rbac.RoleType `json:"role"`
}

// UpdateUserRequest carries optional field updates; nil means unchanged.
type UpdateUserRequest struct {
	Name     *string        `json:"name"`
	Email    *string        `json:"email"`
	Role     *rbac.RoleType `json:"role"`
	IsActive *bool          `json:"isActive"`
}
