package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CommentService handles ticket threads and ticket history.
type CommentService struct {
	tx       Transactor
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	audit    repository.AuditRepository
	policy   *authz.Policy
	clock    Clock
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	Tx          Transactor
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	AuditRepo   repository.AuditRepository
	Policy      *authz.Policy
	Clock       Clock
}

// CommentInput is a new message on a ticket.
type CommentInput struct {
	Message      string
	Satisfaction *int
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		tx:       deps.Tx,
		tickets:  deps.TicketRepo,
		comments: deps.CommentRepo,
		audit:    deps.AuditRepo,
		policy:   deps.Policy,
		clock:    deps.Clock,
	}
}

// List returns the comments of a ticket in posting order.
func (s *CommentService) List(ctx context.Context, identity domain.Identity, ticketID int64) ([]domain.Comment, error) {
	if err := s.policy.Authorize(identity, authz.ResourceComment, authz.ActionList); err != nil {
		return nil, err
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	return s.comments.ListByTicket(ctx, ticketID)
}

// Add posts a comment. Admins and the ticket's assignee write as technicians;
// everyone else writes as requester and may rate the service.
func (s *CommentService) Add(ctx context.Context, identity domain.Identity, ticketID int64, input CommentInput) (*domain.Comment, error) {
	if err := s.policy.Authorize(identity, authz.ResourceComment, authz.ActionCreate); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(input.Message)
	switch {
	case message == "":
		return nil, apperrors.NewValidationError("invalid comment", map[string]any{"message": "is required"})
	case utf8.RuneCountInString(message) > domain.MaxCommentLength:
		return nil, apperrors.NewValidationError("invalid comment",
			map[string]any{"message": fmt.Sprintf("must be at most %d characters", domain.MaxCommentLength)})
	}
	if input.Satisfaction != nil && (*input.Satisfaction < domain.MinSatisfaction || *input.Satisfaction > domain.MaxSatisfaction) {
		return nil, apperrors.NewValidationError("invalid comment",
			map[string]any{"satisfaction": fmt.Sprintf("must be between %d and %d", domain.MinSatisfaction, domain.MaxSatisfaction)})
	}

	var comment *domain.Comment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return notFound(err, "ticket", ticketID)
		}

		authorType := domain.AuthorTypeRequester
		if identity.Admin || (ticket.AssigneeID != nil && identity.Is(*ticket.AssigneeID)) {
			authorType = domain.AuthorTypeTechnician
		}
		if input.Satisfaction != nil && authorType != domain.AuthorTypeRequester {
			return apperrors.NewValidationError("invalid comment",
				map[string]any{"satisfaction": "only requesters can rate a ticket"})
		}

		comment = &domain.Comment{
			TicketID:     ticketID,
			AuthorID:     actorOf(identity),
			AuthorType:   authorType,
			Message:      message,
			Satisfaction: input.Satisfaction,
			Date:         s.clock.Today(),
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		return recordAudit(ctx, s.audit, actorOf(identity), &ticketID, fmt.Sprintf("commented on ticket #%d", ticketID))
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// History returns the audit trail of a ticket, oldest first. Entries of deleted
// tickets remain readable.
func (s *CommentService) History(ctx context.Context, identity domain.Identity, ticketID int64) ([]domain.AuditLogEntry, error) {
	if err := s.policy.Authorize(identity, authz.ResourceHistory, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.audit.ListByTicket(ctx, ticketID)
}
