//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"taskhub/internal/rbac"
	"taskhub/internal/user/models"
	"taskhub/internal/user/store"
	"taskhub/pkg/platform/sentinel"
	"taskhub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.Apply(s.T(), store.Schema)
	s.store = store.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.postgres.DB.Exec("TRUNCATE users")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           "Test User",
		PasswordHash:   "$argon2id$hash",
		IsActive:       true,
		OrganizationID: uuid.New(),
		Role:           rbac.RoleViewer,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := s.newUser("ada@example.com")
	s.Require().NoError(s.store.Create(ctx, user))

	byID, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, byID.Email)
	s.Equal(user.Role, byID.Role)

	byEmail, err := s.store.FindByEmail(ctx, "ADA@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("dup@example.com")))

	err := s.store.Create(ctx, s.newUser("dup@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindMissingUser() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	user := s.newUser("ada@example.com")
	s.Require().NoError(s.store.Create(ctx, user))

	user.Name = "Ada Lovelace"
	user.Role = rbac.RoleAdmin
	user.IsActive = false
	s.Require().NoError(s.store.Update(ctx, user))

	fetched, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", fetched.Name)
	s.Equal(rbac.RoleAdmin, fetched.Role)
	s.False(fetched.IsActive)

	ghost := s.newUser("ghost@example.com")
	s.Require().ErrorIs(s.store.Update(ctx, ghost), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	user := s.newUser("ada@example.com")
	s.Require().NoError(s.store.Create(ctx, user))

	s.Require().NoError(s.store.Delete(ctx, user.ID))
	s.Require().ErrorIs(s.store.Delete(ctx, user.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByOrganization() {
	ctx := context.Background()
	orgID := uuid.New()

	a := s.newUser("a@example.com")
	a.OrganizationID = orgID
	b := s.newUser("b@example.com")
	b.OrganizationID = orgID
	c := s.newUser("c@example.com")

	for _, u := range []*models.User{a, b, c} {
		s.Require().NoError(s.store.Create(ctx, u))
	}

	users, err := s.store.ListByOrganization(ctx, orgID)
	s.Require().NoError(err)
	s.Len(users, 2)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}
