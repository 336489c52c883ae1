package authz

//go:generate mockgen -source=directory.go -destination=mocks/mocks.go -package=mocks Directory

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/rbac"
)

// DirectoryUser is the hydrated user record returned by the directory:
// account state plus role and permissions, loaded eagerly so the resolver
// never issues follow-up reads.
type DirectoryUser struct {
	ID             uuid.UUID
	Email          string
	Name           string
	IsActive       bool
	OrganizationID uuid.UUID
	Role           rbac.RoleType
	Permissions    []string
}

// Directory looks up users for principal resolution. Implementations must be
// safe for concurrent use; the pipeline performs exactly one lookup per
// request.
type Directory interface {
	// FindActiveUserByID returns the user only when it exists and is
	// active. Missing or inactive users surface as sentinel.ErrNotFound.
	FindActiveUserByID(ctx context.Context, id uuid.UUID) (*DirectoryUser, error)
}
