package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/organization/models"
	"taskhub/internal/organization/store"
	"taskhub/internal/rbac"
	usermodels "taskhub/internal/user/models"
	userstore "taskhub/internal/user/store"
	dErrors "taskhub/pkg/domain-errors"
)

func newFixture(t *testing.T) (*Service, *userstore.InMemoryStore) {
	t.Helper()
	users := userstore.NewInMemoryStore()
	return New(store.NewInMemoryStore(), users), users
}

func TestCreateOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active organization", func(t *testing.T) {
		svc, _ := newFixture(t)
		org, err := svc.Create(ctx, models.CreateOrganizationRequest{Name: "Acme", Description: "widgets"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, org.ID)
		assert.True(t, org.IsActive)
		assert.Equal(t, "Acme", org.Name)
	})

	t.Run("name is required", func(t *testing.T) {
		svc, _ := newFixture(t)
		_, err := svc.Create(ctx, models.CreateOrganizationRequest{Name: "   "})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		svc, _ := newFixture(t)
		_, err := svc.Create(ctx, models.CreateOrganizationRequest{Name: "Acme"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, models.CreateOrganizationRequest{Name: "acme"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestDeactivateOrganization(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t)

	org, err := svc.Create(ctx, models.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, org.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	// The record stays readable after deactivation.
	fetched, err := svc.Get(ctx, org.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)

	// Deactivating twice is a no-op, not an error.
	again, err := svc.Deactivate(ctx, org.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
}

func TestListMembers(t *testing.T) {
	ctx := context.Background()
	svc, users := newFixture(t)

	org, err := svc.Create(ctx, models.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, users.Create(ctx, &usermodels.User{
		ID:             uuid.New(),
		Email:          "a@example.com",
		Name:           "A",
		OrganizationID: org.ID,
		Role:           rbac.RoleViewer,
	}))
	require.NoError(t, users.Create(ctx, &usermodels.User{
		ID:             uuid.New(),
		Email:          "b@example.com",
		Name:           "B",
		OrganizationID: uuid.New(),
		Role:           rbac.RoleViewer,
	}))

	members, err := svc.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a@example.com", members[0].Email)

	_, err = svc.ListMembers(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
