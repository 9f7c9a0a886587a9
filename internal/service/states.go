package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// StateResolver identifies the closed and open states of the state catalog by
// name. Every place that needs to know whether a ticket is closed goes
// through it.
type StateResolver struct {
	catalogs    repository.CatalogRepository
	closedNames []string
	openNames   []string
}

// NewStateResolver builds a resolver over the configured name variants.
func NewStateResolver(catalogs repository.CatalogRepository, closedNames, openNames []string) *StateResolver {
	return &StateResolver{catalogs: catalogs, closedNames: closedNames, openNames: openNames}
}

// ClosedNames returns the accepted closed-state names.
func (r *StateResolver) ClosedNames() []string {
	return r.closedNames
}

// IsClosedName reports whether a state name denotes the closed state.
func (r *StateResolver) IsClosedName(name string) bool {
	return domain.MatchesName(name, r.closedNames)
}

// ClosedStates returns every catalog state whose name denotes closure, lowest
// id first. The first entry is the state tickets are moved to on close.
func (r *StateResolver) ClosedStates(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.matching(ctx, r.closedNames)
}

// ClosedStateIDs returns the ids of ClosedStates.
func (r *StateResolver) ClosedStateIDs(ctx context.Context) ([]int64, error) {
	states, err := r.ClosedStates(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(states))
	for _, state := range states {
		ids = append(ids, state.ID)
	}
	return ids, nil
}

// OpenStateID returns the state assigned to new tickets, or nil when no
// catalog entry matches.
func (r *StateResolver) OpenStateID(ctx context.Context) (*int64, error) {
	states, err := r.matching(ctx, r.openNames)
	if err != nil || len(states) == 0 {
		return nil, err
	}
	id := states[0].ID
	return &id, nil
}

func (r *StateResolver) matching(ctx context.Context, names []string) ([]domain.CatalogEntry, error) {
	if len(names) == 0 {
		return nil, nil
	}
	states, err := r.catalogs.List(ctx, domain.CatalogState)
	if err != nil {
		return nil, err
	}
	var result []domain.CatalogEntry
	for _, state := range states {
		if domain.MatchesName(state.Name, names) {
			result = append(result, state)
		}
	}
	return result, nil
}

func containsID(ids []int64, id *int64) bool {
	if id == nil {
		return false
	}
	for _, candidate := range ids {
		if candidate == *id {
			return true
		}
	}
	return false
}
