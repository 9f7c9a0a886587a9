package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// AuditRepository stores append-only audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditLogEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_log (user_id, ticket_id, action)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		entry.UserID,
		entry.TicketID,
		entry.Action,
	).Scan(&entry.ID, &entry.CreatedAt)
	return mapWriteError(err)
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, user_id, ticket_id, action, created_at
        FROM audit_log WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AuditLogEntry{}
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.TicketID, &entry.Action, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
