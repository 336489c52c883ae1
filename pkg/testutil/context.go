package testutil

import (
	"net/http"

	"taskhub/internal/authz"
	"taskhub/internal/rbac"
)

// WithClaims attaches claimed-identity data to the request context.
// This simulates what the identity middleware would do after verifying a token.
func WithClaims(req *http.Request, claims *authz.Claims) *http.Request {
	return req.WithContext(authz.WithClaims(req.Context(), claims))
}

// WithActor is shorthand for the common case of a fully populated claim set.
func WithActor(req *http.Request, userID, email, orgID string, role rbac.RoleType) *http.Request {
	return WithClaims(req, &authz.Claims{
		UserID:         userID,
		Email:          email,
		OrganizationID: orgID,
		Role:           string(role),
	})
}
