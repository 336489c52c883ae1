package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/rbac"
	dErrors "taskhub/pkg/domain-errors"
)

func TestCheckRole(t *testing.T) {
	orgID := uuid.New()
	principal := func(role rbac.RoleType) *Principal {
		return &Principal{ID: uuid.New(), OrganizationID: orgID, Role: role}
	}

	tests := []struct {
		name      string
		principal *Principal
		required  []rbac.RoleType
		wantDeny  bool
	}{
		{
			name:      "no required roles passes for anyone",
			principal: nil,
			required:  nil,
			wantDeny:  false,
		},
		{
			name:      "nil principal denied when roles required",
			principal: nil,
			required:  []rbac.RoleType{rbac.RoleViewer},
			wantDeny:  true,
		},
		{
			name:      "exact role passes",
			principal: principal(rbac.RoleAdmin),
			required:  []rbac.RoleType{rbac.RoleAdmin},
			wantDeny:  false,
		},
		{
			name:      "higher rank satisfies lower requirement",
			principal: principal(rbac.RoleOwner),
			required:  []rbac.RoleType{rbac.RoleViewer},
			wantDeny:  false,
		},
		{
			name:      "lower rank denied",
			principal: principal(rbac.RoleViewer),
			required:  []rbac.RoleType{rbac.RoleAdmin},
			wantDeny:  true,
		},
		{
			name:      "any required role suffices",
			principal: principal(rbac.RoleAdmin),
			required:  []rbac.RoleType{rbac.RoleOwner, rbac.RoleViewer},
			wantDeny:  false,
		},
		{
			name:      "empty role string denied",
			principal: principal(""),
			required:  []rbac.RoleType{rbac.RoleViewer},
			wantDeny:  true,
		},
		{
			name:      "unknown required role never matches",
			principal: principal(rbac.RoleOwner),
			required:  []rbac.RoleType{"superuser"},
			wantDeny:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRole(tt.principal, tt.required)
			if tt.wantDeny {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckOwnership(t *testing.T) {
	orgID := uuid.New()
	p := &Principal{ID: uuid.New(), OrganizationID: orgID, Role: rbac.RoleAdmin}

	t.Run("no resource organization is a no-op", func(t *testing.T) {
		assert.NoError(t, CheckOwnership(p, ""))
		assert.NoError(t, CheckOwnership(nil, ""))
	})

	t.Run("matching organization passes", func(t *testing.T) {
		assert.NoError(t, CheckOwnership(p, orgID.String()))
	})

	t.Run("different organization denied", func(t *testing.T) {
		err := CheckOwnership(p, uuid.New().String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("nil principal denied", func(t *testing.T) {
		err := CheckOwnership(nil, orgID.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("malformed resource id denied", func(t *testing.T) {
		err := CheckOwnership(p, "not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
