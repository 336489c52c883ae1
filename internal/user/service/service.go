package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/rbac"
	"taskhub/internal/user/models"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/platform/sentinel"
	"taskhub/pkg/requestcontext"
)

// Store abstracts user persistence. Implementations return sentinel errors
// for infrastructure facts; the service translates them to domain errors.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PasswordHasher hashes credentials at creation time. Verification lives in
// the auth module; user management only ever writes hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service orchestrates user lifecycle management within organizations.
type Service struct {
	users  Store
	hasher PasswordHasher
}

func New(users Store, hasher PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "valid email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	orgID, err := uuid.Parse(strings.TrimSpace(req.OrganizationID))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "valid organizationId is required")
	}
	if !rbac.IsValid(req.Role) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", req.Role)
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password is required")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           name,
		PasswordHash:   hash,
		IsActive:       true,
		OrganizationID: orgID,
		Role:           req.Role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.User, error) {
	users, err := s.users.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "name is required")
		}
		user.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, dErrors.New(dErrors.CodeBadRequest, "valid email is required")
		}
		user.Email = email
	}
	if req.Role != nil {
		if !rbac.IsValid(*req.Role) {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = requestcontext.Now(ctx)

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user with this email already exists")
		}
		return nil, wrapUserErr(err)
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return wrapUserErr(err)
	}
	return nil
}

func wrapUserErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
}
