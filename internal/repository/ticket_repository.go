package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// TicketFilter captures list parameters.
type TicketFilter struct {
	StateID       *int64
	CriticalityID *int64
	CategoryID    *int64
	LocationID    *int64
	AssigneeID    *int64
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetView(ctx context.Context, id int64) (*domain.TicketView, error)
	ListViews(ctx context.Context, filter TicketFilter) ([]domain.TicketView, int64, error)
	CountUnresolvedByAssignee(ctx context.Context, userID int64, closedStateIDs []int64) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.category_id, t.phone_ext, t.location_id, t.criticality_id, t.description,
               t.assignee_id, t.state_id, t.open_date, t.close_date, t.created_at, t.updated_at`

const ticketViewQuery = `
        SELECT ` + ticketColumns + `,
               c.name, c.description, l.name, l.description, cr.name, cr.description,
               s.name, s.description, u.name, u.email, u.role_id
        FROM tickets t
        LEFT JOIN categories c ON c.id = t.category_id
        LEFT JOIN locations l ON l.id = t.location_id
        LEFT JOIN criticalities cr ON cr.id = t.criticality_id
        LEFT JOIN ticket_states s ON s.id = t.state_id
        LEFT JOIN users u ON u.id = t.assignee_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (category_id, phone_ext, location_id, criticality_id, description,
                             assignee_id, state_id, open_date, close_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.CategoryID,
		ticket.PhoneExt,
		ticket.LocationID,
		ticket.CriticalityID,
		ticket.Description,
		ticket.AssigneeID,
		ticket.StateID,
		ticket.OpenDate,
		ticket.CloseDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapWriteError(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET category_id=$1, phone_ext=$2, location_id=$3, criticality_id=$4,
            description=$5, assignee_id=$6, state_id=$7, open_date=$8, close_date=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.CategoryID,
		ticket.PhoneExt,
		ticket.LocationID,
		ticket.CriticalityID,
		ticket.Description,
		ticket.AssigneeID,
		ticket.StateID,
		ticket.OpenDate,
		ticket.CloseDate,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return mapWriteError(err)
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var ticket domain.Ticket
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetView(ctx context.Context, id int64) (*domain.TicketView, error) {
	row := persistence.Conn(ctx, r.pool).QueryRow(ctx, ticketViewQuery+` WHERE t.id=$1`, id)
	return scanTicketView(row)
}

func (r *ticketRepository) ListViews(ctx context.Context, filter TicketFilter) ([]domain.TicketView, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	addEq := func(column string, value *int64) {
		if value == nil {
			return
		}
		args = append(args, *value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	addEq("t.state_id", filter.StateID)
	addEq("t.criticality_id", filter.CriticalityID)
	addEq("t.category_id", filter.CategoryID)
	addEq("t.location_id", filter.LocationID)
	addEq("t.assignee_id", filter.AssigneeID)

	where := strings.Join(clauses, " AND ")
	conn := persistence.Conn(ctx, r.pool)

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM tickets t WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.id DESC LIMIT %d OFFSET %d`, ticketViewQuery, where, limit, offset)
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.TicketView{}
	for rows.Next() {
		view, err := scanTicketView(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *view)
	}
	return result, total, rows.Err()
}

func (r *ticketRepository) CountUnresolvedByAssignee(ctx context.Context, userID int64, closedStateIDs []int64) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE assignee_id=$1 AND (state_id IS NULL OR NOT (state_id = ANY($2)))`
	if closedStateIDs == nil {
		closedStateIDs = []int64{}
	}
	var count int64
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, userID, closedStateIDs).Scan(&count)
	return count, err
}

func ticketFields(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.CategoryID,
		&t.PhoneExt,
		&t.LocationID,
		&t.CriticalityID,
		&t.Description,
		&t.AssigneeID,
		&t.StateID,
		&t.OpenDate,
		&t.CloseDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}

type nullableRef struct {
	name        *string
	description *string
}

func (n nullableRef) entry(id *int64) *domain.CatalogEntry {
	if id == nil || n.name == nil {
		return nil
	}
	return &domain.CatalogEntry{ID: *id, Name: *n.name, Description: n.description}
}

func scanTicketView(row pgx.Row) (*domain.TicketView, error) {
	var (
		view                                   domain.TicketView
		category, location, criticality, state nullableRef
		assigneeName, assigneeEmail            *string
		assigneeRole                           *int64
	)
	dest := append(ticketFields(&view.Ticket),
		&category.name, &category.description,
		&location.name, &location.description,
		&criticality.name, &criticality.description,
		&state.name, &state.description,
		&assigneeName, &assigneeEmail, &assigneeRole,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	view.Category = category.entry(view.CategoryID)
	view.Location = location.entry(view.LocationID)
	view.Criticality = criticality.entry(view.CriticalityID)
	view.State = state.entry(view.StateID)
	if view.AssigneeID != nil && assigneeName != nil {
		view.Assignee = &domain.UserSummary{
			ID:     *view.AssigneeID,
			Name:   *assigneeName,
			Email:  derefString(assigneeEmail),
			RoleID: assigneeRole,
		}
	}
	view.OpenDate = normalizeDate(view.OpenDate)
	if view.CloseDate != nil {
		d := normalizeDate(*view.CloseDate)
		view.CloseDate = &d
	}
	return &view, nil
}

// normalizeDate keeps DATE columns at midnight UTC whatever the session zone.
func normalizeDate(t time.Time) time.Time {
	return domain.DateOf(t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
