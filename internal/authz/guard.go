package authz

import (
	"strings"

	"taskhub/internal/rbac"
	dErrors "taskhub/pkg/domain-errors"
)

// CheckRole decides whether the principal may invoke an operation declaring
// the given required roles.
//
// No required roles means no restriction: the check passes for any caller,
// including anonymous ones, so public operations need no guard at all. When
// roles are required, the principal must exist and carry a role whose rank
// satisfies at least one of them.
func CheckRole(p *Principal, required []rbac.RoleType) error {
	if len(required) == 0 {
		return nil
	}
	if p == nil || p.Role == "" {
		return dErrors.New(dErrors.CodeForbidden, "user role not found")
	}
	if !rbac.Satisfies(p.Role, required) {
		return dErrors.Newf(dErrors.CodeForbidden,
			"insufficient permissions: requires %s, user has %s",
			joinRoles(required), p.Role)
	}
	return nil
}

// CheckOwnership decides whether the principal may touch a resource scoped
// to resourceOrgID. An empty id makes the check a no-op: the operation is
// organization-agnostic.
func CheckOwnership(p *Principal, resourceOrgID string) error {
	if resourceOrgID == "" {
		return nil
	}
	if p == nil {
		return dErrors.New(dErrors.CodeForbidden, "user not authenticated")
	}
	if p.OrganizationID.String() != resourceOrgID {
		return dErrors.New(dErrors.CodeForbidden,
			"access denied: resources outside your organization are not reachable")
	}
	return nil
}

func joinRoles(roles []rbac.RoleType) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}
