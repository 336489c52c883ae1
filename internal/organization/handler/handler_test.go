package handler_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/auth/revocation"
	"taskhub/internal/auth/token"
	"taskhub/internal/authz"
	"taskhub/internal/directory"
	"taskhub/internal/organization/handler"
	"taskhub/internal/organization/models"
	"taskhub/internal/organization/service"
	"taskhub/internal/organization/store"
	"taskhub/internal/platform/middleware"
	"taskhub/internal/rbac"
	usermodels "taskhub/internal/user/models"
	userstore "taskhub/internal/user/store"
	"taskhub/pkg/testutil"
)

type fixture struct {
	router chi.Router
	svc    *service.Service
	users  *userstore.InMemoryStore
	tokens *token.Service
	orgID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	orgs := store.NewInMemoryStore()
	users := userstore.NewInMemoryStore()
	tokens := token.NewService("test-signing-key", "taskhub", time.Hour, revocation.NewMemoryList())
	svc := service.New(orgs, users)

	az := authz.NewAuthorizer(authz.NewResolver(directory.New(users)), logger, nil)

	r := chi.NewRouter()
	r.Use(middleware.BufferBody)
	r.Use(authz.ClaimedIdentity(tokens, logger))
	handler.New(svc, logger).Register(r, az)

	return &fixture{router: r, svc: svc, users: users, tokens: tokens, orgID: uuid.New()}
}

func (f *fixture) seedMember(t *testing.T, email string, role rbac.RoleType) string {
	t.Helper()
	now := time.Now().UTC()
	user := &usermodels.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           "Member",
		PasswordHash:   "hashed",
		IsActive:       true,
		OrganizationID: f.orgID,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	bearer, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return bearer
}

func (f *fixture) seedOrganization(t *testing.T, name string) *models.Organization {
	t.Helper()
	org, err := f.svc.Create(context.Background(), models.CreateOrganizationRequest{Name: name})
	require.NoError(t, err)
	return org
}

func TestCreateOrganizationRequiresOwner(t *testing.T) {
	f := newFixture(t)
	adminToken := f.seedMember(t, "admin@example.com", rbac.RoleAdmin)
	ownerToken := f.seedMember(t, "owner@example.com", rbac.RoleOwner)

	t.Run("admin is forbidden", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/organizations", map[string]string{
			"name": "Acme",
		})
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("owner may create", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/organizations", map[string]string{
			"name":        "Acme",
			"description": "Widgets",
		})
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		org := testutil.UnmarshalResponse[models.Organization](t, rr)
		assert.Equal(t, "Acme", org.Name)
		assert.True(t, org.IsActive)
	})
}

func TestListOrganizations(t *testing.T) {
	f := newFixture(t)
	viewerToken := f.seedMember(t, "viewer@example.com", rbac.RoleViewer)
	f.seedOrganization(t, "Acme")
	f.seedOrganization(t, "Globex")

	req := testutil.NewRequest(t, http.MethodGet, "/organizations")
	req.Header.Set("Authorization", "Bearer "+viewerToken)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)

	orgs := testutil.UnmarshalResponse[[]models.Organization](t, rr)
	assert.Len(t, *orgs, 2)
}

func TestListOrganizationMembers(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganization(t, "Acme")
	f.orgID = org.ID
	viewerToken := f.seedMember(t, "viewer@example.com", rbac.RoleViewer)
	f.seedMember(t, "admin@example.com", rbac.RoleAdmin)

	t.Run("members of the addressed organization", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/organizations/"+org.ID.String()+"/users")
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		members := testutil.UnmarshalResponse[[]usermodels.User](t, rr)
		assert.Len(t, *members, 2)
	})

	t.Run("unknown organization is 404", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/organizations/"+uuid.New().String()+"/users")
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestDeactivateOrganization(t *testing.T) {
	f := newFixture(t)
	ownerToken := f.seedMember(t, "owner@example.com", rbac.RoleOwner)
	viewerToken := f.seedMember(t, "viewer@example.com", rbac.RoleViewer)
	org := f.seedOrganization(t, "Acme")

	t.Run("viewer is forbidden", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/organizations/"+org.ID.String())
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("owner deactivates and the record stays readable", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/organizations/"+org.ID.String())
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		deactivated := testutil.UnmarshalResponse[models.Organization](t, rr)
		assert.False(t, deactivated.IsActive)

		get := testutil.NewRequest(t, http.MethodGet, "/organizations/"+org.ID.String())
		get.Header.Set("Authorization", "Bearer "+ownerToken)
		rr = testutil.DoRequest(f.router, get)
		testutil.AssertStatusOK(t, rr)
	})
}
