package domain

import "time"

// CommentAuthorType indicates on which side of the ticket the author stands.
type CommentAuthorType string

const (
	AuthorTypeRequester  CommentAuthorType = "requester"
	AuthorTypeTechnician CommentAuthorType = "technician"
)

const (
	MaxCommentLength = 255
	MinSatisfaction  = 1
	MaxSatisfaction  = 5
)

// Comment captures a message in a ticket thread. Satisfaction is only given
// by requesters.
type Comment struct {
	ID           int64
	TicketID     int64
	AuthorID     *int64
	AuthorType   CommentAuthorType
	Message      string
	Satisfaction *int
	Date         time.Time
}
