package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/testutil"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/optional"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	user, pair, err := e.auth.Register(ctx, RegisterInput{Name: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, testutil.RoleUser, *user.RoleID)
	assert.True(t, user.Active)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	identity, err := e.auth.ResolveIdentity(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.False(t, identity.Admin)

	_, _, err = e.auth.Login(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = e.auth.Login(ctx, "ana@example.com", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCreds))

	_, _, err = e.auth.Login(ctx, "nobody@example.com", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCreds))

	_, _, err = e.auth.Register(ctx, RegisterInput{Name: "ana2", Email: "ana@example.com", Password: "secret1"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, _, err = e.auth.Register(ctx, RegisterInput{Name: "ana", Email: "other@example.com", Password: "secret1"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	var registered, loggedIn int
	for _, entry := range e.store.AuditLog() {
		assert.Nil(t, entry.TicketID)
		switch entry.Action {
		case "logged in":
			loggedIn++
		default:
			registered++
		}
	}
	assert.Equal(t, 1, registered)
	assert.Equal(t, 1, loggedIn)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, _, err := e.auth.Register(ctx, RegisterInput{Name: "", Email: "bad", Password: "123"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	details := apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuthService_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.admin(t)

	user, pair, err := e.auth.Register(ctx, RegisterInput{Name: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = e.users.Update(ctx, admin, user.ID, UserUpdateInput{Active: testutil.Ptr(false)})
	require.NoError(t, err)

	_, _, err = e.auth.Login(ctx, "ana@example.com", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccountInactive))

	_, err = e.auth.ResolveIdentity(ctx, pair.AccessToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccountInactive))

	_, err = e.auth.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccountInactive))
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, pair, err := e.auth.Register(ctx, RegisterInput{Name: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	fresh, err := e.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	_, err = e.auth.Refresh(ctx, pair.AccessToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCreds))

	_, err = e.auth.ResolveIdentity(ctx, pair.RefreshToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCreds))
}

func TestAuthService_AdminIdentityFollowsRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.admin(t)

	user, pair, err := e.auth.Register(ctx, RegisterInput{Name: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, e.auth.IsAdmin(user))

	_, err = e.users.Update(ctx, admin, user.ID, UserUpdateInput{RoleID: optional.Of(testutil.RoleAdmin)})
	require.NoError(t, err)

	identity, err := e.auth.ResolveIdentity(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, identity.Admin)

	me, err := e.auth.Me(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Name)
}

func TestAuthService_DeletedUserTokenRejected(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.admin(t)

	user, pair, err := e.auth.Register(ctx, RegisterInput{Name: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, admin, user.ID))

	_, err = e.auth.ResolveIdentity(ctx, pair.AccessToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCreds))
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	member := e.member(t, "ana")

	states, err := e.catalogs.List(ctx, member, domain.CatalogState)
	require.NoError(t, err)
	assert.Len(t, states, 3)

	roles, err := e.catalogs.Roles(ctx, member)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestPasswordHashUsesConfiguredCost(t *testing.T) {
	hash, err := auth.HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.Equal(t, "", passwordProblem("secret1", 6))
	assert.NotEqual(t, "", passwordProblem("12345", 6))
	assert.NotEqual(t, "", passwordProblem(strings.Repeat("x", auth.MaxPasswordBytes+1), 6))
	assert.NoError(t, auth.ComparePassword(hash, "secret1"))
}
