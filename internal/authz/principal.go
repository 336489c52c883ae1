// Package authz implements the request authorization pipeline: a cheap
// claimed identity extracted from the bearer token, an authoritative
// principal resolved through the directory, a role guard, and an
// organization ownership check. Handlers downstream of the pipeline only
// ever see the resolved principal.
package authz

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/rbac"
)

// Claims is the provisional identity carried by a verified token. It is a
// stand-in only: the guard never trusts it for role decisions, but the audit
// trail may use it when a request is rejected before resolution.
type Claims struct {
	UserID         string
	Email          string
	OrganizationID string
	Role           string
	TokenID        string
}

// Principal is the authenticated actor for one request, hydrated from the
// directory. It is built fresh per request and never cached.
type Principal struct {
	ID             uuid.UUID
	Email          string
	Name           string
	OrganizationID uuid.UUID
	Role           rbac.RoleType
	Permissions    []string
}

type (
	claimsKey    struct{}
	principalKey struct{}
)

// WithClaims attaches the provisional token identity to the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the provisional token identity, or nil for anonymous
// requests.
func ClaimsFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// WithPrincipal attaches the resolved principal to the context, replacing
// any provisional identity for downstream consumers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the resolved principal, or nil when resolution has
// not run (public routes).
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
