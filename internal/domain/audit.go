package domain

import "time"

// AuditLogEntry is an immutable audit trail entry. TicketID survives the
// deletion of the ticket it points to.
type AuditLogEntry struct {
	ID        int64
	UserID    *int64
	TicketID  *int64
	Action    string
	CreatedAt time.Time
}
