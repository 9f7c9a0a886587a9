package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// DashboardService aggregates ticket counts.
type DashboardService struct {
	tx        Transactor
	dashboard repository.DashboardRepository
	states    *StateResolver
	policy    *authz.Policy
}

// NewDashboardService constructs the service.
func NewDashboardService(tx Transactor, dashboard repository.DashboardRepository, states *StateResolver, policy *authz.Policy) *DashboardService {
	return &DashboardService{tx: tx, dashboard: dashboard, states: states, policy: policy}
}

// Stats computes totals plus per-state and per-criticality counts. Every
// catalog row is listed, with zero when no ticket references it.
func (s *DashboardService) Stats(ctx context.Context, identity domain.Identity) (*domain.DashboardStats, error) {
	if err := s.policy.Authorize(identity, authz.ResourceDashboard, authz.ActionRead); err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{}
	err := s.tx.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if stats.Total, err = s.dashboard.CountTickets(ctx); err != nil {
			return err
		}
		if stats.ByState, err = s.dashboard.CountByState(ctx); err != nil {
			return err
		}
		stats.ByCriticality, err = s.dashboard.CountByCriticality(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, state := range stats.ByState {
		if s.states.IsClosedName(state.Name) {
			stats.Closed += state.Count
		}
	}
	stats.Open = stats.Total - stats.Closed
	return stats, nil
}
