package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	usermodels "taskhub/internal/user/models"
	userservice "taskhub/internal/user/service"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/platform/sentinel"
)

// UserStore is the credential lookup surface of the user store.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*usermodels.User, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(password, encoded string) error
}

// TokenIssuer signs tokens for authenticated users and retires them at
// logout.
type TokenIssuer interface {
	Issue(user *usermodels.User) (string, error)
	Revoke(ctx context.Context, token string) error
}

// Session is what register and login hand back to the client.
type Session struct {
	AccessToken string           `json:"access_token"`
	User        *usermodels.User `json:"user"`
}

// Service implements registration, credential login, and logout.
type Service struct {
	users    *userservice.Service
	store    UserStore
	verifier PasswordVerifier
	tokens   TokenIssuer
}

func New(users *userservice.Service, store UserStore, verifier PasswordVerifier, tokens TokenIssuer) *Service {
	return &Service{users: users, store: store, verifier: verifier, tokens: tokens}
}

// Register creates the account and signs it in immediately.
func (s *Service) Register(ctx context.Context, req usermodels.CreateUserRequest) (*Session, error) {
	user, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(user)
}

// Login verifies the credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}
	if !user.IsActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user account is disabled")
	}
	if err := s.verifier.Verify(password, user.PasswordHash); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return s.startSession(user)
}

// Logout retires the presented token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Profile returns the caller's own record.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*usermodels.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Service) startSession(user *usermodels.User) (*Session, error) {
	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &Session{AccessToken: accessToken, User: user}, nil
}
