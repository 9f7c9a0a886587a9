package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// CommentRepository manages ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, author_type, message, satisfaction, comment_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		string(comment.AuthorType),
		comment.Message,
		comment.Satisfaction,
		comment.Date,
	).Scan(&comment.ID)
	return mapWriteError(err)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, author_type, message, satisfaction, comment_date
        FROM comments WHERE ticket_id=$1 ORDER BY id ASC`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var (
			comment    domain.Comment
			authorType string
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&authorType,
			&comment.Message,
			&comment.Satisfaction,
			&comment.Date,
		); err != nil {
			return nil, err
		}
		comment.AuthorType = domain.CommentAuthorType(authorType)
		comment.Date = domain.DateOf(comment.Date)
		result = append(result, comment)
	}
	return result, rows.Err()
}
