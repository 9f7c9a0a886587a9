package domain

import "time"

const (
	MaxPhoneExtLength    = 8
	MaxDescriptionLength = 500
)

// Ticket is the aggregate for support requests. Catalog and user references
// are plain foreign keys; the referenced rows live independently.
type Ticket struct {
	ID            int64
	CategoryID    *int64
	PhoneExt      *string
	LocationID    *int64
	CriticalityID *int64
	Description   *string
	AssigneeID    *int64
	StateID       *int64
	OpenDate      time.Time
	CloseDate     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsInState reports whether the ticket currently references stateID.
func (t *Ticket) IsInState(stateID int64) bool {
	return t.StateID != nil && *t.StateID == stateID
}

// TicketView is a ticket joined with its expanded references.
type TicketView struct {
	Ticket
	Category    *CatalogEntry
	Location    *CatalogEntry
	Criticality *CatalogEntry
	State       *CatalogEntry
	Assignee    *UserSummary
}
