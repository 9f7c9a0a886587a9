package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Transactor runs a unit of work atomically. Repositories called with the
// context handed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinReadSnapshot runs read-only work against one consistent snapshot.
	WithinReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock provides the current calendar date.
type Clock interface {
	Today() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock reading the wall time in loc.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Today() time.Time {
	return domain.DateOf(time.Now().In(c.loc))
}

// notFound converts a missing row into a NotFound domain error.
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func recordAudit(ctx context.Context, audit repository.AuditRepository, actor *int64, ticketID *int64, action string) error {
	return audit.Append(ctx, &domain.AuditLogEntry{UserID: actor, TicketID: ticketID, Action: action})
}

func actorOf(identity domain.Identity) *int64 {
	id := identity.UserID
	return &id
}
