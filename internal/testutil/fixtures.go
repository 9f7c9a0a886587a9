package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// FixedClock always reports the same day.
type FixedClock struct {
	Date time.Time
}

// Today returns the fixed date truncated to midnight UTC.
func (c FixedClock) Today() time.Time {
	return domain.DateOf(c.Date)
}

// Date builds a calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// AddUser stores a user with the given role and returns it. The password hash
// is left as provided.
func (s *Store) AddUser(t *testing.T, name string, roleID int64, passwordHash string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: passwordHash,
		RoleID:       &roleID,
		Active:       true,
	}
	require.NoError(t, s.Users().Create(context.Background(), user))
	return user
}

// AddTicket stores a ticket as-is and returns it.
func (s *Store) AddTicket(t *testing.T, ticket domain.Ticket) *domain.Ticket {
	t.Helper()
	if ticket.OpenDate.IsZero() {
		ticket.OpenDate = Date(2024, time.January, 1)
	}
	require.NoError(t, s.Tickets().Create(context.Background(), &ticket))
	return &ticket
}
