package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping repository integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE audit_log, comments, tickets, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func TestTicketRepository_CreateAndView(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tickets := NewTicketRepository(pool)

	tech := &domain.User{Name: "tech", Email: "tech@example.com", PasswordHash: "x", RoleID: int64Ptr(2), Active: true}
	require.NoError(t, users.Create(ctx, tech))

	openDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		CategoryID:    int64Ptr(1),
		CriticalityID: int64Ptr(2),
		LocationID:    int64Ptr(1),
		StateID:       int64Ptr(1),
		AssigneeID:    &tech.ID,
		PhoneExt:      strPtr("1234"),
		Description:   strPtr("printer jam"),
		OpenDate:      openDate,
	}
	require.NoError(t, tickets.Create(ctx, ticket))
	require.NotZero(t, ticket.ID)

	view, err := tickets.GetView(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, openDate, view.OpenDate)
	assert.Nil(t, view.CloseDate)
	require.NotNil(t, view.State)
	assert.Equal(t, "Abierto", view.State.Name)
	require.NotNil(t, view.Assignee)
	assert.Equal(t, "tech", view.Assignee.Name)

	views, total, err := tickets.ListViews(ctx, TicketFilter{AssigneeID: &tech.ID, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, views, 1)

	_, err = tickets.GetView(ctx, ticket.ID+1000)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestTicketRepository_UnknownReferenceIsValidationError(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)

	err := tickets.Create(ctx, &domain.Ticket{CategoryID: int64Ptr(9999), OpenDate: time.Now().UTC()})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestTicketRepository_CountUnresolvedByAssignee(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tickets := NewTicketRepository(pool)

	tech := &domain.User{Name: "tech", Email: "tech@example.com", PasswordHash: "x", Active: true}
	require.NoError(t, users.Create(ctx, tech))

	closedStateID := int64(3)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{AssigneeID: &tech.ID, StateID: int64Ptr(1), OpenDate: time.Now().UTC()}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{AssigneeID: &tech.ID, OpenDate: time.Now().UTC()}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{AssigneeID: &tech.ID, StateID: &closedStateID, OpenDate: time.Now().UTC()}))

	count, err := tickets.CountUnresolvedByAssignee(ctx, tech.ID, []int64{closedStateID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = tickets.CountUnresolvedByAssignee(ctx, tech.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestUserRepository_DeleteNullsReferences(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tickets := NewTicketRepository(pool)
	comments := NewCommentRepository(pool)
	audit := NewAuditRepository(pool)

	user := &domain.User{Name: "ana", Email: "ana@example.com", PasswordHash: "x", Active: true}
	require.NoError(t, users.Create(ctx, user))

	ticket := &domain.Ticket{AssigneeID: &user.ID, OpenDate: time.Now().UTC()}
	require.NoError(t, tickets.Create(ctx, ticket))
	require.NoError(t, comments.Create(ctx, &domain.Comment{
		TicketID: ticket.ID, AuthorID: &user.ID, AuthorType: domain.AuthorTypeRequester,
		Message: "hello", Date: domain.DateOf(time.Now()),
	}))
	require.NoError(t, audit.Append(ctx, &domain.AuditLogEntry{UserID: &user.ID, TicketID: &ticket.ID, Action: "created"}))

	require.NoError(t, users.Delete(ctx, user.ID))

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssigneeID)

	list, err := comments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].AuthorID)

	entries, err := audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)

	assert.ErrorIs(t, users.Delete(ctx, user.ID), pgx.ErrNoRows)
}

func TestTicketRepository_DeleteCascadesCommentsKeepsAudit(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	comments := NewCommentRepository(pool)
	audit := NewAuditRepository(pool)

	ticket := &domain.Ticket{OpenDate: time.Now().UTC()}
	require.NoError(t, tickets.Create(ctx, ticket))
	require.NoError(t, comments.Create(ctx, &domain.Comment{
		TicketID: ticket.ID, AuthorType: domain.AuthorTypeRequester, Message: "x", Date: domain.DateOf(time.Now()),
	}))
	require.NoError(t, audit.Append(ctx, &domain.AuditLogEntry{TicketID: &ticket.ID, Action: "deleted"}))

	require.NoError(t, tickets.Delete(ctx, ticket.ID))

	list, err := comments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	entries, err := audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUserRepository_DuplicateEmailIsConflict(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)

	require.NoError(t, users.Create(ctx, &domain.User{Name: "a", Email: "dup@example.com", PasswordHash: "x", Active: true}))
	err := users.Create(ctx, &domain.User{Name: "b", Email: "dup@example.com", PasswordHash: "x", Active: true})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	err = users.Create(ctx, &domain.User{Name: "c", Email: "DUP@Example.com", PasswordHash: "x", Active: true})
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, "email", apperrors.ToDomainError(err).Details["field"])

	other := &domain.User{Name: "d", Email: "other@example.com", PasswordHash: "x", Active: true}
	require.NoError(t, users.Create(ctx, other))
	other.Email = "Dup@EXAMPLE.com"
	err = users.Update(ctx, other)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	found, err := users.GetByEmail(ctx, "DUP@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a", found.Name)
}

func TestTxManager_ReadSnapshotIgnoresConcurrentWrites(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	tx := persistence.NewTxManager(pool)
	tickets := NewTicketRepository(pool)
	dashboard := NewDashboardRepository(pool)

	require.NoError(t, tickets.Create(ctx, &domain.Ticket{OpenDate: time.Now().UTC()}))

	err := tx.WithinReadSnapshot(ctx, func(snapCtx context.Context) error {
		before, err := dashboard.CountTickets(snapCtx)
		require.NoError(t, err)

		require.NoError(t, tickets.Create(ctx, &domain.Ticket{OpenDate: time.Now().UTC()}))

		after, err := dashboard.CountTickets(snapCtx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		return nil
	})
	require.NoError(t, err)

	total, err := dashboard.CountTickets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestDashboardRepository_LeftOuterCounts(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	dashboard := NewDashboardRepository(pool)

	require.NoError(t, tickets.Create(ctx, &domain.Ticket{StateID: int64Ptr(1), CriticalityID: int64Ptr(1), OpenDate: time.Now().UTC()}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{OpenDate: time.Now().UTC()}))

	total, err := dashboard.CountTickets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	byState, err := dashboard.CountByState(ctx)
	require.NoError(t, err)
	require.Len(t, byState, 3)
	assert.EqualValues(t, 1, byState[0].Count)
	assert.EqualValues(t, 0, byState[2].Count)

	byCriticality, err := dashboard.CountByCriticality(ctx)
	require.NoError(t, err)
	assert.Len(t, byCriticality, 4)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	tx := persistence.NewTxManager(pool)
	tickets := NewTicketRepository(pool)
	audit := NewAuditRepository(pool)

	var created domain.Ticket
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		created = domain.Ticket{OpenDate: time.Now().UTC()}
		if err := tickets.Create(ctx, &created); err != nil {
			return err
		}
		return audit.Append(ctx, &domain.AuditLogEntry{UserID: int64Ptr(424242), Action: "boom"})
	})
	require.Error(t, err)

	_, err = tickets.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestCatalogRepository_ListAndGet(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	catalogs := NewCatalogRepository(pool)

	states, err := catalogs.List(ctx, domain.CatalogState)
	require.NoError(t, err)
	require.NotEmpty(t, states)

	entry, err := catalogs.GetByID(ctx, domain.CatalogState, states[0].ID)
	require.NoError(t, err)
	assert.Equal(t, states[0].Name, entry.Name)

	roles, err := catalogs.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)

	_, err = catalogs.List(ctx, domain.CatalogKind("bogus"))
	assert.Error(t, err)
}
