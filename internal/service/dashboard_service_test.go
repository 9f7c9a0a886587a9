package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/testutil"
)

// writeAfterTotal inserts a ticket between the total and the breakdown queries.
type writeAfterTotal struct {
	repository.DashboardRepository
	write func()
}

func (d writeAfterTotal) CountTickets(ctx context.Context) (int64, error) {
	total, err := d.DashboardRepository.CountTickets(ctx)
	d.write()
	return total, err
}

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store lists every catalog row", func(t *testing.T) {
		e := newEnv(t)
		stats, err := e.dashboard.Stats(ctx, e.member(t, "ana"))
		require.NoError(t, err)
		assert.Zero(t, stats.Total)
		assert.Zero(t, stats.Open)
		assert.Zero(t, stats.Closed)
		assert.Len(t, stats.ByState, 3)
		assert.Len(t, stats.ByCriticality, 4)
		for _, item := range stats.ByCriticality {
			assert.Zero(t, item.Count)
		}
	})

	t.Run("open and closed add up to total", func(t *testing.T) {
		e := newEnv(t)
		e.store.AddTicket(t, domain.Ticket{StateID: testutil.Ptr(testutil.StateOpen), CriticalityID: testutil.Ptr(int64(3))})
		e.store.AddTicket(t, domain.Ticket{StateID: testutil.Ptr(testutil.StateAssigned)})
		e.store.AddTicket(t, domain.Ticket{StateID: testutil.Ptr(testutil.StateClosed), CriticalityID: testutil.Ptr(int64(3))})
		e.store.AddTicket(t, domain.Ticket{})

		stats, err := e.dashboard.Stats(ctx, e.member(t, "ana"))
		require.NoError(t, err)
		assert.EqualValues(t, 4, stats.Total)
		assert.EqualValues(t, 1, stats.Closed)
		assert.EqualValues(t, 3, stats.Open)
		assert.Equal(t, stats.Total, stats.Open+stats.Closed)

		counts := map[string]int64{}
		for _, item := range stats.ByState {
			counts[item.Name] = item.Count
		}
		assert.Equal(t, map[string]int64{"Abierto": 1, "Asignado": 1, "Cerrado": 1}, counts)
		assert.EqualValues(t, 2, stats.ByCriticality[2].Count)
	})

	t.Run("closed count follows the close resolver", func(t *testing.T) {
		e := newEnv(t)
		e.store.SetStates(domain.CatalogEntry{ID: 1, Name: "Open"}, domain.CatalogEntry{ID: 2, Name: "Closed"})
		member := e.member(t, "ana")
		ticket := e.store.AddTicket(t, domain.Ticket{StateID: testutil.Ptr(int64(1))})

		_, err := e.tickets.Close(ctx, member, ticket.ID)
		require.NoError(t, err)

		stats, err := e.dashboard.Stats(ctx, member)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.Closed)
		assert.EqualValues(t, 0, stats.Open)
	})

	t.Run("counts come from one snapshot", func(t *testing.T) {
		e := newEnv(t)
		e.store.AddTicket(t, domain.Ticket{StateID: testutil.Ptr(testutil.StateOpen)})
		repo := writeAfterTotal{
			DashboardRepository: e.store.Dashboard(),
			write: func() {
				e.store.AddTicket(t, domain.Ticket{StateID: testutil.Ptr(testutil.StateClosed)})
			},
		}
		svc := NewDashboardService(e.store, repo, NewStateResolver(e.store.Catalogs(), closedNames, openNames), e.policy)

		stats, err := svc.Stats(ctx, e.member(t, "ana"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.Total)
		assert.EqualValues(t, 0, stats.Closed)
		assert.EqualValues(t, 1, stats.Open)

		var byState int64
		for _, item := range stats.ByState {
			byState += item.Count
		}
		assert.Equal(t, stats.Total, byState)
	})
}
