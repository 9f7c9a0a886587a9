package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/testutil"
)

var (
	closedNames = []string{"cerrado", "closed", "finalizado"}
	openNames   = []string{"abierto", "open"}
	today       = testutil.Date(2024, time.March, 20)
)

type env struct {
	store     *testutil.Store
	roles     *authz.Roles
	tickets   *TicketService
	dashboard *DashboardService
	comments  *CommentService
	users     *UserService
	auth      *AuthService
	catalogs  *CatalogService
	policy    *authz.Policy
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewStore()
	ctx := context.Background()

	roleList, err := store.Catalogs().ListRoles(ctx)
	require.NoError(t, err)
	roles, err := authz.ResolveRoles(roleList, []string{"administrador", "admin"}, []string{"usuario"})
	require.NoError(t, err)
	policy, err := authz.NewPolicy()
	require.NoError(t, err)

	clock := testutil.FixedClock{Date: today}
	states := NewStateResolver(store.Catalogs(), closedNames, openNames)

	return &env{
		store:  store,
		roles:  roles,
		policy: policy,
		tickets: NewTicketService(TicketDependencies{
			Tx:              store,
			TicketRepo:      store.Tickets(),
			AuditRepo:       store.Audit(),
			States:          states,
			Policy:          policy,
			Clock:           clock,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		}),
		dashboard: NewDashboardService(store, store.Dashboard(), states, policy),
		comments: NewCommentService(CommentDependencies{
			Tx:          store,
			TicketRepo:  store.Tickets(),
			CommentRepo: store.CommentsRepo(),
			AuditRepo:   store.Audit(),
			Policy:      policy,
			Clock:       clock,
		}),
		users: NewUserService(UserDependencies{
			Tx:             store,
			UserRepo:       store.Users(),
			TicketRepo:     store.Tickets(),
			AuditRepo:      store.Audit(),
			States:         states,
			Roles:          roles,
			Policy:         policy,
			BcryptCost:     4,
			MinPasswordLen: 6,
		}),
		auth: NewAuthService(AuthDependencies{
			Tx:             store,
			UserRepo:       store.Users(),
			AuditRepo:      store.Audit(),
			Roles:          roles,
			TokenManager:   auth.NewTokenManager("test-secret", time.Hour, 24*time.Hour),
			BcryptCost:     4,
			MinPasswordLen: 6,
		}),
		catalogs: NewCatalogService(store.Catalogs(), policy),
	}
}

func (e *env) admin(t *testing.T) domain.Identity {
	t.Helper()
	return e.roles.IdentityFor(e.store.AddUser(t, "admin", testutil.RoleAdmin, "x"))
}

func (e *env) member(t *testing.T, name string) domain.Identity {
	t.Helper()
	return e.roles.IdentityFor(e.store.AddUser(t, name, testutil.RoleUser, "x"))
}
