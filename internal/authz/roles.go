package authz

import (
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// reservedAdminRoleID is used when no catalog name matches the admin names.
const reservedAdminRoleID int64 = 1

// ErrNoAdminRole is returned when the role catalog has no administrator role.
var ErrNoAdminRole = errors.New("role catalog has no administrator role")

// Roles holds the well-known roles resolved from the catalog at startup.
type Roles struct {
	adminID   int64
	defaultID *int64
	known     map[int64]domain.Role
}

// ResolveRoles picks the admin and default roles by name. Roles are expected in
// id order; the lowest matching id wins.
func ResolveRoles(roles []domain.Role, adminNames, defaultNames []string) (*Roles, error) {
	r := &Roles{known: make(map[int64]domain.Role, len(roles))}
	var admin *int64
	for _, role := range roles {
		r.known[role.ID] = role
		id := role.ID
		if admin == nil && domain.MatchesName(role.Name, adminNames) {
			admin = &id
		}
		if r.defaultID == nil && domain.MatchesName(role.Name, defaultNames) {
			r.defaultID = &id
		}
	}
	if admin == nil {
		if _, ok := r.known[reservedAdminRoleID]; !ok {
			return nil, ErrNoAdminRole
		}
		id := reservedAdminRoleID
		admin = &id
	}
	r.adminID = *admin
	return r, nil
}

// AdminRoleID returns the administrator role id.
func (r *Roles) AdminRoleID() int64 {
	return r.adminID
}

// DefaultRoleID returns the role given to self-registered users, if any.
func (r *Roles) DefaultRoleID() *int64 {
	return r.defaultID
}

// IsAdmin reports whether roleID is the administrator role.
func (r *Roles) IsAdmin(roleID *int64) bool {
	return roleID != nil && *roleID == r.adminID
}

// Exists reports whether roleID is in the catalog.
func (r *Roles) Exists(roleID int64) bool {
	_, ok := r.known[roleID]
	return ok
}

// IdentityFor builds the identity of an authenticated user.
func (r *Roles) IdentityFor(user *domain.User) domain.Identity {
	return domain.Identity{UserID: user.ID, RoleID: user.RoleID, Admin: r.IsAdmin(user.RoleID)}
}
