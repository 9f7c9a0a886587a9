package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/optional"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tx              Transactor
	tickets         repository.TicketRepository
	audit           repository.AuditRepository
	states          *StateResolver
	policy          *authz.Policy
	clock           Clock
	defaultPageSize int
	maxPageSize     int
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Tx              Transactor
	TicketRepo      repository.TicketRepository
	AuditRepo       repository.AuditRepository
	States          *StateResolver
	Policy          *authz.Policy
	Clock           Clock
	DefaultPageSize int
	MaxPageSize     int
}

// TicketCreateInput describes ticket creation payload. OpenDate is the raw
// client string.
type TicketCreateInput struct {
	CategoryID    *int64
	PhoneExt      *string
	LocationID    *int64
	CriticalityID *int64
	Description   *string
	AssigneeID    *int64
	StateID       *int64
	OpenDate      *string
}

// TicketUpdateInput carries the fields a client may change. Only fields that
// are Set are applied; a Set field without value clears the column.
type TicketUpdateInput struct {
	CategoryID    optional.Value[int64]
	PhoneExt      optional.Value[string]
	LocationID    optional.Value[int64]
	CriticalityID optional.Value[int64]
	Description   optional.Value[string]
	AssigneeID    optional.Value[int64]
	StateID       optional.Value[int64]
	OpenDate      optional.Value[string]
}

// TicketListInput holds list filters and pagination.
type TicketListInput struct {
	StateID       *int64
	CriticalityID *int64
	CategoryID    *int64
	LocationID    *int64
	AssigneeID    *int64
	Page          int
	PageSize      int
}

// TicketPage is one page of a ticket listing.
type TicketPage struct {
	Items    []domain.TicketView
	Total    int64
	Page     int
	PageSize int
}

// CloseResult reports the outcome of a close request.
type CloseResult struct {
	Ticket        *domain.TicketView
	AlreadyClosed bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.DefaultPageSize <= 0 {
		deps.DefaultPageSize = 20
	}
	if deps.MaxPageSize < deps.DefaultPageSize {
		deps.MaxPageSize = deps.DefaultPageSize
	}
	return &TicketService{
		tx:              deps.Tx,
		tickets:         deps.TicketRepo,
		audit:           deps.AuditRepo,
		states:          deps.States,
		policy:          deps.Policy,
		clock:           deps.Clock,
		defaultPageSize: deps.DefaultPageSize,
		maxPageSize:     deps.MaxPageSize,
	}
}

// Create stores a new ticket. The open date defaults to today and new tickets
// start in the open state when none is given.
func (s *TicketService) Create(ctx context.Context, identity domain.Identity, input TicketCreateInput) (*domain.TicketView, error) {
	if err := s.policy.Authorize(identity, authz.ResourceTicket, authz.ActionCreate); err != nil {
		return nil, err
	}
	if err := validateTicketText(input.PhoneExt, input.Description); err != nil {
		return nil, err
	}

	openDate := s.clock.Today()
	if input.OpenDate != nil {
		parsed, err := s.parseOpenDate(*input.OpenDate)
		if err != nil {
			return nil, err
		}
		openDate = parsed
	}

	ticket := &domain.Ticket{
		CategoryID:    input.CategoryID,
		PhoneExt:      trimmed(input.PhoneExt),
		LocationID:    input.LocationID,
		CriticalityID: input.CriticalityID,
		Description:   trimmed(input.Description),
		AssigneeID:    input.AssigneeID,
		StateID:       input.StateID,
		OpenDate:      openDate,
	}

	var view *domain.TicketView
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if ticket.StateID == nil {
			openState, err := s.states.OpenStateID(ctx)
			if err != nil {
				return err
			}
			ticket.StateID = openState
		}
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if err := recordAudit(ctx, s.audit, actorOf(identity), &ticket.ID, fmt.Sprintf("created ticket #%d", ticket.ID)); err != nil {
			return err
		}
		var err error
		view, err = s.tickets.GetView(ctx, ticket.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Get returns a ticket with its expanded references.
func (s *TicketService) Get(ctx context.Context, identity domain.Identity, id int64) (*domain.TicketView, error) {
	if err := s.policy.Authorize(identity, authz.ResourceTicket, authz.ActionRead); err != nil {
		return nil, err
	}
	view, err := s.tickets.GetView(ctx, id)
	if err != nil {
		return nil, notFound(err, "ticket", id)
	}
	return view, nil
}

// List returns a filtered page of tickets, newest first.
func (s *TicketService) List(ctx context.Context, identity domain.Identity, input TicketListInput) (*TicketPage, error) {
	if err := s.policy.Authorize(identity, authz.ResourceTicket, authz.ActionList); err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	items, total, err := s.tickets.ListViews(ctx, repository.TicketFilter{
		StateID:       input.StateID,
		CriticalityID: input.CriticalityID,
		CategoryID:    input.CategoryID,
		LocationID:    input.LocationID,
		AssigneeID:    input.AssigneeID,
		Limit:         size,
		Offset:        (page - 1) * size,
	})
	if err != nil {
		return nil, err
	}
	return &TicketPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// Update applies a partial change. The record is not re-validated as a whole:
// moving a ticket to the closed state here leaves its close date untouched.
func (s *TicketService) Update(ctx context.Context, identity domain.Identity, id int64, input TicketUpdateInput) (*domain.TicketView, error) {
	if err := s.policy.Authorize(identity, authz.ResourceTicket, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateTicketText(input.PhoneExt.Value, input.Description.Value); err != nil {
		return nil, err
	}

	var openDate *time.Time
	if input.OpenDate.Set {
		if input.OpenDate.Value == nil {
			return nil, apperrors.NewValidationError("open_date cannot be null", map[string]any{"open_date": "required"})
		}
		parsed, err := s.parseOpenDate(*input.OpenDate.Value)
		if err != nil {
			return nil, err
		}
		openDate = &parsed
	}

	var view *domain.TicketView
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "ticket", id)
		}

		var changed []string
		apply := func(name string, set bool, fn func()) {
			if set {
				fn()
				changed = append(changed, name)
			}
		}
		apply("category", input.CategoryID.Set, func() { ticket.CategoryID = input.CategoryID.Value })
		apply("phone_ext", input.PhoneExt.Set, func() { ticket.PhoneExt = trimmed(input.PhoneExt.Value) })
		apply("location", input.LocationID.Set, func() { ticket.LocationID = input.LocationID.Value })
		apply("criticality", input.CriticalityID.Set, func() { ticket.CriticalityID = input.CriticalityID.Value })
		apply("description", input.Description.Set, func() { ticket.Description = trimmed(input.Description.Value) })
		apply("assignee", input.AssigneeID.Set, func() { ticket.AssigneeID = input.AssigneeID.Value })
		apply("state", input.StateID.Set, func() { ticket.StateID = input.StateID.Value })
		apply("open_date", openDate != nil, func() { ticket.OpenDate = *openDate })

		if len(changed) > 0 {
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return err
			}
			sort.Strings(changed)
			action := fmt.Sprintf("updated ticket #%d: %s", id, strings.Join(changed, ", "))
			if err := recordAudit(ctx, s.audit, actorOf(identity), &ticket.ID, action); err != nil {
				return err
			}
		}

		view, err = s.tickets.GetView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Close moves a ticket to the closed state and stamps today's close date.
// Closing a ticket that is already closed with a close date changes nothing.
func (s *TicketService) Close(ctx context.Context, identity domain.Identity, id int64) (*CloseResult, error) {
	if err := s.policy.Authorize(identity, authz.ResourceTicket, authz.ActionClose); err != nil {
		return nil, err
	}

	result := &CloseResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		closedStates, err := s.states.ClosedStates(ctx)
		if err != nil {
			return err
		}
		if len(closedStates) == 0 {
			return apperrors.NewNoClosedStateConfigured(s.states.ClosedNames())
		}

		ticket, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "ticket", id)
		}

		closedIDs := make([]int64, 0, len(closedStates))
		for _, state := range closedStates {
			closedIDs = append(closedIDs, state.ID)
		}

		isClosed := containsID(closedIDs, ticket.StateID)
		if isClosed && ticket.CloseDate != nil {
			result.AlreadyClosed = true
		} else {
			if !isClosed {
				target := closedStates[0].ID
				ticket.StateID = &target
			}
			today := s.clock.Today()
			ticket.CloseDate = &today
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return err
			}
			if err := recordAudit(ctx, s.audit, actorOf(identity), &ticket.ID, fmt.Sprintf("closed ticket #%d", id)); err != nil {
				return err
			}
		}

		result.Ticket, err = s.tickets.GetView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a ticket and its comments. Audit entries are kept.
func (s *TicketService) Delete(ctx context.Context, identity domain.Identity, id int64) error {
	if err := s.policy.Authorize(identity, authz.ResourceTicket, authz.ActionDelete); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Delete(ctx, id); err != nil {
			return notFound(err, "ticket", id)
		}
		return recordAudit(ctx, s.audit, actorOf(identity), &id, fmt.Sprintf("deleted ticket #%d", id))
	})
}

func (s *TicketService) parseOpenDate(value string) (time.Time, error) {
	parsed, ok := domain.ParseDate(value)
	if !ok {
		return time.Time{}, apperrors.NewInvalidDateFormat(value)
	}
	if parsed.After(s.clock.Today()) {
		return time.Time{}, apperrors.NewValidationError("open_date cannot be in the future",
			map[string]any{"open_date": "must not be later than today"})
	}
	return parsed, nil
}

func validateTicketText(phoneExt, description *string) error {
	fields := map[string]any{}
	if phoneExt != nil && utf8.RuneCountInString(strings.TrimSpace(*phoneExt)) > domain.MaxPhoneExtLength {
		fields["phone_ext"] = fmt.Sprintf("must be at most %d characters", domain.MaxPhoneExtLength)
	}
	if description != nil && utf8.RuneCountInString(strings.TrimSpace(*description)) > domain.MaxDescriptionLength {
		fields["description"] = fmt.Sprintf("must be at most %d characters", domain.MaxDescriptionLength)
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid ticket fields", fields)
	}
	return nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
