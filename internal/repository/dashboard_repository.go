package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// DashboardRepository runs the aggregate queries behind the dashboard.
type DashboardRepository interface {
	CountTickets(ctx context.Context) (int64, error)
	CountByState(ctx context.Context) ([]domain.NamedCount, error)
	CountByCriticality(ctx context.Context) ([]domain.NamedCount, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository builds repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) CountTickets(ctx context.Context) (int64, error) {
	var total int64
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total)
	return total, err
}

func (r *dashboardRepository) CountByState(ctx context.Context) ([]domain.NamedCount, error) {
	const query = `
        SELECT s.id, s.name, COUNT(t.id)
        FROM ticket_states s
        LEFT OUTER JOIN tickets t ON t.state_id = s.id
        GROUP BY s.id, s.name
        ORDER BY s.id`
	return r.namedCounts(ctx, query)
}

func (r *dashboardRepository) CountByCriticality(ctx context.Context) ([]domain.NamedCount, error) {
	const query = `
        SELECT c.id, c.name, COUNT(t.id)
        FROM criticalities c
        LEFT OUTER JOIN tickets t ON t.criticality_id = c.id
        GROUP BY c.id, c.name
        ORDER BY c.id`
	return r.namedCounts(ctx, query)
}

func (r *dashboardRepository) namedCounts(ctx context.Context, query string) ([]domain.NamedCount, error) {
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.NamedCount{}
	for rows.Next() {
		var item domain.NamedCount
		if err := rows.Scan(&item.ID, &item.Name, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
