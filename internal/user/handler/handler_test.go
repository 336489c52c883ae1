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
	"taskhub/internal/platform/middleware"
	"taskhub/internal/rbac"
	"taskhub/internal/user/handler"
	"taskhub/internal/user/models"
	"taskhub/internal/user/service"
	"taskhub/internal/user/store"
	"taskhub/pkg/testutil"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

type fixture struct {
	router chi.Router
	store  *store.InMemoryStore
	tokens *token.Service
	orgID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	users := store.NewInMemoryStore()
	tokens := token.NewService("test-signing-key", "taskhub", time.Hour, revocation.NewMemoryList())

	az := authz.NewAuthorizer(authz.NewResolver(directory.New(users)), logger, nil)

	r := chi.NewRouter()
	r.Use(middleware.BufferBody)
	r.Use(authz.ClaimedIdentity(tokens, logger))
	handler.New(service.New(users, plainHasher{}), logger).Register(r, az)

	return &fixture{router: r, store: users, tokens: tokens, orgID: uuid.New()}
}

// seed stores a member and returns a bearer token for them.
func (f *fixture) seed(t *testing.T, email string, role rbac.RoleType) (*models.User, string) {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
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
	require.NoError(t, f.store.Create(context.Background(), user))
	bearer, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return user, bearer
}

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, viewerToken := f.seed(t, "viewer@example.com", rbac.RoleViewer)
	_, adminToken := f.seed(t, "admin@example.com", rbac.RoleAdmin)

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/users"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/users")
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("admin sees the directory", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/users")
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		users := testutil.UnmarshalResponse[[]models.User](t, rr)
		assert.Len(t, *users, 2)
	})
}

func TestCreateUserEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.seed(t, "admin@example.com", rbac.RoleAdmin)

	payload := func(orgID string) map[string]any {
		return map[string]any{
			"email":          "new@example.com",
			"name":           "New Member",
			"password":       "correct horse",
			"organizationId": orgID,
			"role":           "viewer",
		}
	}

	t.Run("own organization succeeds", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/users", payload(f.orgID.String()))
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		created := testutil.UnmarshalResponse[models.User](t, rr)
		assert.Equal(t, "new@example.com", created.Email)
		assert.Equal(t, f.orgID, created.OrganizationID)
	})

	t.Run("foreign organization is forbidden", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/users", payload(uuid.New().String()))
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	target, _ := f.seed(t, "target@example.com", rbac.RoleAdmin)
	_, viewerToken := f.seed(t, "viewer@example.com", rbac.RoleViewer)

	t.Run("viewer can read a user", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/users/"+target.ID.String())
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		user := testutil.UnmarshalResponse[models.User](t, rr)
		assert.Equal(t, target.ID, user.ID)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/users/"+uuid.New().String())
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/users/not-a-uuid")
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestDeleteUserRequiresOwner(t *testing.T) {
	f := newFixture(t)
	target, _ := f.seed(t, "target@example.com", rbac.RoleViewer)
	_, adminToken := f.seed(t, "admin@example.com", rbac.RoleAdmin)
	_, ownerToken := f.seed(t, "owner@example.com", rbac.RoleOwner)

	t.Run("admin is forbidden", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/users/"+target.ID.String())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("owner may remove a user", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/users/"+target.ID.String())
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		_, err := f.store.FindByID(context.Background(), target.ID)
		require.Error(t, err)
	})
}

func TestUpdateUserRole(t *testing.T) {
	f := newFixture(t)
	target, _ := f.seed(t, "target@example.com", rbac.RoleViewer)
	_, adminToken := f.seed(t, "admin@example.com", rbac.RoleAdmin)

	req := testutil.NewJSONRequest(t, http.MethodPut, "/users/"+target.ID.String(), map[string]any{
		"role": "admin",
	})
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)

	updated := testutil.UnmarshalResponse[models.User](t, rr)
	assert.Equal(t, rbac.RoleAdmin, updated.Role)
}
