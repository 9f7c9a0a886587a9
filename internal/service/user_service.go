package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/optional"
)

// UserService administers accounts.
type UserService struct {
	tx          Transactor
	users       repository.UserRepository
	tickets     repository.TicketRepository
	audit       repository.AuditRepository
	states      *StateResolver
	roles       *authz.Roles
	policy      *authz.Policy
	bcryptCost  int
	minPassword int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Tx             Transactor
	UserRepo       repository.UserRepository
	TicketRepo     repository.TicketRepository
	AuditRepo      repository.AuditRepository
	States         *StateResolver
	Roles          *authz.Roles
	Policy         *authz.Policy
	BcryptCost     int
	MinPasswordLen int
}

// UserUpdateInput lists the user fields a client may change.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	RoleID   optional.Value[int64]
	Active   *bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		tx:          deps.Tx,
		users:       deps.UserRepo,
		tickets:     deps.TicketRepo,
		audit:       deps.AuditRepo,
		states:      deps.States,
		roles:       deps.Roles,
		policy:      deps.Policy,
		bcryptCost:  deps.BcryptCost,
		minPassword: deps.MinPasswordLen,
	}
}

// List returns every account.
func (s *UserService) List(ctx context.Context, identity domain.Identity) ([]domain.User, error) {
	if err := s.policy.Authorize(identity, authz.ResourceUser, authz.ActionList); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Get returns one account. Non-admins may only read their own.
func (s *UserService) Get(ctx context.Context, identity domain.Identity, id int64) (*domain.User, error) {
	if err := s.policy.AuthorizeUserAccess(identity, id, authz.ActionRead); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// Update changes the given fields of an account. Role and status changes are
// reserved to admins, who cannot demote or deactivate themselves.
func (s *UserService) Update(ctx context.Context, identity domain.Identity, id int64, input UserUpdateInput) (*domain.User, error) {
	if err := s.policy.AuthorizeUserAccess(identity, id, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := s.validateUpdate(input); err != nil {
		return nil, err
	}

	var passwordHash string
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "user", id)
		}

		var changed []string
		if input.RoleID.Set && !sameID(user.RoleID, input.RoleID.Value) {
			if err := s.policy.AuthorizeRoleChange(identity, id, s.roles.IsAdmin(input.RoleID.Value)); err != nil {
				return err
			}
			user.RoleID = input.RoleID.Value
			changed = append(changed, "role")
		}
		if input.Active != nil && *input.Active != user.Active {
			if err := s.policy.AuthorizeStatusChange(identity, id, *input.Active); err != nil {
				return err
			}
			user.Active = *input.Active
			changed = append(changed, "is_active")
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
			changed = append(changed, "name")
		}
		if input.Email != nil {
			user.Email = strings.TrimSpace(*input.Email)
			changed = append(changed, "email")
		}
		if input.Password != nil {
			user.PasswordHash = passwordHash
			changed = append(changed, "password")
		}

		if len(changed) > 0 {
			if err := s.users.Update(ctx, user); err != nil {
				return err
			}
			sort.Strings(changed)
			action := fmt.Sprintf("updated user #%d: %s", id, strings.Join(changed, ", "))
			if err := recordAudit(ctx, s.audit, actorOf(identity), nil, action); err != nil {
				return err
			}
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an account. It is refused while the user is still assigned
// to a ticket that is not closed.
func (s *UserService) Delete(ctx context.Context, identity domain.Identity, id int64) error {
	if err := s.policy.AuthorizeUserDeletion(identity, id); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return notFound(err, "user", id)
		}

		closedIDs, err := s.states.ClosedStateIDs(ctx)
		if err != nil {
			return err
		}
		open, err := s.tickets.CountUnresolvedByAssignee(ctx, id, closedIDs)
		if err != nil {
			return err
		}
		if open > 0 {
			return apperrors.NewConflict("user still has unresolved tickets assigned",
				map[string]any{"user_id": id, "unresolved_tickets": open})
		}

		if err := s.users.Delete(ctx, id); err != nil {
			return notFound(err, "user", id)
		}
		return recordAudit(ctx, s.audit, actorOf(identity), nil, fmt.Sprintf("deleted user #%d", id))
	})
}

func (s *UserService) validateUpdate(input UserUpdateInput) error {
	fields := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		fields["name"] = "cannot be empty"
	}
	if input.Email != nil {
		if err := emailValidator.Var(strings.TrimSpace(*input.Email), "required,email"); err != nil {
			fields["email"] = "must be a valid email address"
		}
	}
	if input.Password != nil {
		if msg := passwordProblem(*input.Password, s.minPassword); msg != "" {
			fields["password"] = msg
		}
	}
	if input.RoleID.Value != nil && !s.roles.Exists(*input.RoleID.Value) {
		fields["role_id"] = "unknown role"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid user fields", fields)
	}
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
