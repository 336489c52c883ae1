package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"

	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/platform/sentinel"
)

// Resolver turns the claimed identity on a request into an authoritative
// principal via a directory lookup.
type Resolver struct {
	directory Directory
}

func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve hydrates the principal for the claimed identity in ctx.
// Returns unauthorized when no identity signal is present at all, and
// forbidden when the claimed user does not exist or is inactive. The
// resolved principal supersedes the claims; callers attach it to the
// context before dispatching the operation.
func (r *Resolver) Resolve(ctx context.Context) (*Principal, error) {
	claims := ClaimsFrom(ctx)
	if claims == nil || claims.UserID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "user not found")
	}

	user, err := r.directory.FindActiveUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "directory lookup failed")
	}

	return &Principal{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		Permissions:    user.Permissions,
	}, nil
}
