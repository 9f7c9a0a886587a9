package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy()
	require.NoError(t, err)
	return p
}

var (
	admin  = domain.Identity{UserID: 1, Admin: true}
	member = domain.Identity{UserID: 2}
)

func TestPolicy_Can(t *testing.T) {
	p := newPolicy(t)

	tests := []struct {
		name     string
		identity domain.Identity
		resource Resource
		action   Action
		want     bool
	}{
		{"admin deletes tickets", admin, ResourceTicket, ActionDelete, true},
		{"admin lists users", admin, ResourceUser, ActionList, true},
		{"member lists tickets", member, ResourceTicket, ActionList, true},
		{"member creates tickets", member, ResourceTicket, ActionCreate, true},
		{"member closes tickets", member, ResourceTicket, ActionClose, true},
		{"member reads dashboard", member, ResourceDashboard, ActionRead, true},
		{"member reads catalogs", member, ResourceCatalog, ActionRead, true},
		{"member comments", member, ResourceComment, ActionCreate, true},
		{"member reads history", member, ResourceHistory, ActionRead, true},
		{"member cannot delete tickets", member, ResourceTicket, ActionDelete, false},
		{"member cannot list users", member, ResourceUser, ActionList, false},
		{"member cannot delete users", member, ResourceUser, ActionDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Can(tt.identity, tt.resource, tt.action))
		})
	}
}

func TestPolicy_AuthorizeUserAccess(t *testing.T) {
	p := newPolicy(t)

	require.NoError(t, p.AuthorizeUserAccess(member, member.UserID, ActionRead))
	require.NoError(t, p.AuthorizeUserAccess(member, member.UserID, ActionUpdate))
	require.NoError(t, p.AuthorizeUserAccess(admin, member.UserID, ActionUpdate))

	err := p.AuthorizeUserAccess(member, 99, ActionRead)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestPolicy_AuthorizeRoleChange(t *testing.T) {
	p := newPolicy(t)

	assert.True(t, apperrors.HasCode(p.AuthorizeRoleChange(member, member.UserID, false), apperrors.CodeForbidden))
	assert.True(t, apperrors.HasCode(p.AuthorizeRoleChange(admin, admin.UserID, false), apperrors.CodeForbidden))
	assert.NoError(t, p.AuthorizeRoleChange(admin, admin.UserID, true))
	assert.NoError(t, p.AuthorizeRoleChange(admin, member.UserID, false))
}

func TestPolicy_AuthorizeStatusChange(t *testing.T) {
	p := newPolicy(t)

	assert.True(t, apperrors.HasCode(p.AuthorizeStatusChange(member, member.UserID, false), apperrors.CodeForbidden))
	assert.True(t, apperrors.HasCode(p.AuthorizeStatusChange(admin, admin.UserID, false), apperrors.CodeForbidden))
	assert.NoError(t, p.AuthorizeStatusChange(admin, member.UserID, false))
}

func TestPolicy_AuthorizeUserDeletion(t *testing.T) {
	p := newPolicy(t)

	assert.True(t, apperrors.HasCode(p.AuthorizeUserDeletion(member, 3), apperrors.CodeForbidden))
	assert.True(t, apperrors.HasCode(p.AuthorizeUserDeletion(admin, admin.UserID), apperrors.CodeForbidden))
	assert.NoError(t, p.AuthorizeUserDeletion(admin, member.UserID))
}

func TestResolveRoles(t *testing.T) {
	catalog := []domain.Role{{ID: 1, Name: "Administrador"}, {ID: 2, Name: "Técnico"}, {ID: 3, Name: "Usuario"}}

	t.Run("by name", func(t *testing.T) {
		roles, err := ResolveRoles(catalog, []string{"administrador", "admin"}, []string{"usuario"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, roles.AdminRoleID())
		require.NotNil(t, roles.DefaultRoleID())
		assert.EqualValues(t, 3, *roles.DefaultRoleID())

		adminRole, techRole := int64(1), int64(2)
		assert.True(t, roles.IsAdmin(&adminRole))
		assert.False(t, roles.IsAdmin(&techRole))
		assert.False(t, roles.IsAdmin(nil))
		assert.True(t, roles.Exists(2))
		assert.False(t, roles.Exists(7))
	})

	t.Run("admin role under another id", func(t *testing.T) {
		roles, err := ResolveRoles([]domain.Role{{ID: 4, Name: "Usuario"}, {ID: 9, Name: "ADMIN"}}, []string{"admin"}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 9, roles.AdminRoleID())
		assert.Nil(t, roles.DefaultRoleID())
	})

	t.Run("falls back to reserved id", func(t *testing.T) {
		roles, err := ResolveRoles([]domain.Role{{ID: 1, Name: "Root"}}, []string{"admin"}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, roles.AdminRoleID())
	})

	t.Run("no admin role", func(t *testing.T) {
		_, err := ResolveRoles([]domain.Role{{ID: 2, Name: "Usuario"}}, []string{"admin"}, nil)
		assert.ErrorIs(t, err, ErrNoAdminRole)
	})

	t.Run("identity", func(t *testing.T) {
		roles, err := ResolveRoles(catalog, []string{"administrador"}, nil)
		require.NoError(t, err)
		roleID := int64(1)
		identity := roles.IdentityFor(&domain.User{ID: 5, RoleID: &roleID})
		assert.True(t, identity.Admin)
		assert.EqualValues(t, 5, identity.UserID)
	})
}
