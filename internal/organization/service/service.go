package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/organization/models"
	usermodels "taskhub/internal/user/models"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/platform/sentinel"
	"taskhub/pkg/requestcontext"
)

// Store abstracts organization persistence.
type Store interface {
	Create(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

// UserLister provides the member listing for an organization. It is the user
// module's store surface, kept narrow so the two modules only share reads.
type UserLister interface {
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*usermodels.User, error)
}

// Service manages the organization lifecycle. Organizations are never hard
// deleted: removal deactivates the tenant so its audit trail stays
// attributable.
type Service struct {
	orgs  Store
	users UserLister
}

func New(orgs Store, users UserLister) *Service {
	return &Service{orgs: orgs, users: users}
}

func (s *Service) Create(ctx context.Context, req models.CreateOrganizationRequest) (*models.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
	}

	now := requestcontext.Now(ctx)
	org := &models.Organization{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "organization with this name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create organization")
	}
	return org, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.FindByID(ctx, id)
	if err != nil {
		return nil, wrapOrgErr(err)
	}
	return org, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

// ListMembers returns the users belonging to the organization, verifying the
// organization exists first.
func (s *Service) ListMembers(ctx context.Context, id uuid.UUID) ([]*usermodels.User, error) {
	if _, err := s.orgs.FindByID(ctx, id); err != nil {
		return nil, wrapOrgErr(err)
	}
	users, err := s.users.ListByOrganization(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organization members")
	}
	return users, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateOrganizationRequest) (*models.Organization, error) {
	org, err := s.orgs.FindByID(ctx, id)
	if err != nil {
		return nil, wrapOrgErr(err)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
		}
		org.Name = name
	}
	if req.Description != nil {
		org.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}
	org.UpdatedAt = requestcontext.Now(ctx)

	if err := s.orgs.Update(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "organization with this name already exists")
		}
		return nil, wrapOrgErr(err)
	}
	return org, nil
}

// Deactivate retires an organization. Its users and tasks remain readable
// for audit purposes but the tenant no longer accepts activity.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.FindByID(ctx, id)
	if err != nil {
		return nil, wrapOrgErr(err)
	}
	if !org.IsActive {
		return org, nil
	}
	org.IsActive = false
	org.UpdatedAt = requestcontext.Now(ctx)
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, wrapOrgErr(err)
	}
	return org, nil
}

func wrapOrgErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "organization not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "organization store failure")
}
