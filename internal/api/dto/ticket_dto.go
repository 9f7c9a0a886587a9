package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/pkg/util/optional"
)

// CreateTicketRequest payload. Every field is optional; open_date defaults to
// today and state to the open state.
type CreateTicketRequest struct {
	Category    *int64  `json:"category"`
	PhoneExt    *string `json:"phone_ext"`
	Location    *int64  `json:"location"`
	Criticality *int64  `json:"criticality"`
	Description *string `json:"description"`
	Assignee    *int64  `json:"assignee"`
	State       *int64  `json:"state"`
	OpenDate    *string `json:"open_date"`
}

// UpdateTicketRequest payload. Absent keys are left untouched, explicit nulls
// clear the field.
type UpdateTicketRequest struct {
	Category    optional.Value[int64]  `json:"category"`
	PhoneExt    optional.Value[string] `json:"phone_ext"`
	Location    optional.Value[int64]  `json:"location"`
	Criticality optional.Value[int64]  `json:"criticality"`
	Description optional.Value[string] `json:"description"`
	Assignee    optional.Value[int64]  `json:"assignee"`
	State       optional.Value[int64]  `json:"state"`
	OpenDate    optional.Value[string] `json:"open_date"`
}

// TicketResponse is the public ticket shape. Dates use DD-MM-YYYY.
type TicketResponse struct {
	ID                int64            `json:"id"`
	Category          *int64           `json:"category"`
	PhoneExt          *string          `json:"phone_ext"`
	Location          *int64           `json:"location"`
	Criticality       *int64           `json:"criticality"`
	Description       *string          `json:"description"`
	Assignee          *int64           `json:"assignee"`
	State             *int64           `json:"state"`
	OpenDate          string           `json:"open_date"`
	CloseDate         *string          `json:"close_date"`
	CategoryDetail    *CatalogResponse `json:"category_detail"`
	LocationDetail    *CatalogResponse `json:"location_detail"`
	CriticalityDetail *CatalogResponse `json:"criticality_detail"`
	StateDetail       *CatalogResponse `json:"state_detail"`
	AssigneeDetail    *UserSummary     `json:"assignee_detail"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Items    []TicketResponse `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// CloseTicketResponse reports the ticket after a close request.
type CloseTicketResponse struct {
	Ticket        TicketResponse `json:"ticket"`
	AlreadyClosed bool           `json:"already_closed"`
}
