package dto

import "time"

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message      string `json:"message" validate:"required"`
	Satisfaction *int   `json:"satisfaction" validate:"omitempty,min=1,max=5"`
}

// CommentResponse is a message in a ticket thread.
type CommentResponse struct {
	ID           int64  `json:"id"`
	TicketID     int64  `json:"ticket_id"`
	AuthorID     *int64 `json:"author_id"`
	AuthorType   string `json:"author_type"`
	Message      string `json:"message"`
	Satisfaction *int   `json:"satisfaction"`
	Date         string `json:"date"`
}

// AuditEntryResponse is one line of a ticket history.
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	TicketID  *int64    `json:"ticket_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
