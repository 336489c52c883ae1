// Package directory adapts the user store into the lookup interface the
// authorization pipeline resolves principals against.
package directory

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/authz"
	"taskhub/internal/rbac"
	"taskhub/internal/user/models"
	"taskhub/pkg/platform/sentinel"
)

// UserFinder is the slice of the user store the directory needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Directory hydrates directory users from the user store, attaching the
// permission set derived from the stored role.
type Directory struct {
	users UserFinder
}

func New(users UserFinder) *Directory {
	return &Directory{users: users}
}

// FindActiveUserByID reports deactivated accounts the same way as missing
// ones so callers cannot distinguish the two.
func (d *Directory) FindActiveUserByID(ctx context.Context, id uuid.UUID) (*authz.DirectoryUser, error) {
	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, sentinel.ErrNotFound
	}
	return &authz.DirectoryUser{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		IsActive:       user.IsActive,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		Permissions:    rbac.Permissions(user.Role),
	}, nil
}
