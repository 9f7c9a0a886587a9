package authz

import (
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Resource names an object family guarded by the policy.
type Resource string

// Action names an operation on a resource.
type Action string

const (
	ResourceTicket    Resource = "ticket"
	ResourceComment   Resource = "comment"
	ResourceHistory   Resource = "history"
	ResourceCatalog   Resource = "catalog"
	ResourceDashboard Resource = "dashboard"
	ResourceUser      Resource = "user"
)

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionClose  Action = "close"
	ActionDelete Action = "delete"
)

const (
	subjectAdmin  = "admin"
	subjectMember = "member"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Member rules. User rules only grant access to the member's own record; the
// ownership check lives in AuthorizeUserAccess.
var rules = [][]string{
	{subjectAdmin, "*", "*"},
	{subjectMember, string(ResourceTicket), string(ActionList)},
	{subjectMember, string(ResourceTicket), string(ActionRead)},
	{subjectMember, string(ResourceTicket), string(ActionCreate)},
	{subjectMember, string(ResourceTicket), string(ActionUpdate)},
	{subjectMember, string(ResourceTicket), string(ActionClose)},
	{subjectMember, string(ResourceComment), string(ActionList)},
	{subjectMember, string(ResourceComment), string(ActionCreate)},
	{subjectMember, string(ResourceHistory), string(ActionRead)},
	{subjectMember, string(ResourceCatalog), string(ActionRead)},
	{subjectMember, string(ResourceDashboard), string(ActionRead)},
	{subjectMember, string(ResourceUser), string(ActionRead)},
	{subjectMember, string(ResourceUser), string(ActionUpdate)},
}

// Policy decides what an identity may do.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the in-memory enforcer with the built-in rules.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load authorization model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("load authorization rules: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

func subjectOf(identity domain.Identity) string {
	if identity.Admin {
		return subjectAdmin
	}
	return subjectMember
}

// Can reports whether identity may perform action on resource. Evaluation
// errors deny.
func (p *Policy) Can(identity domain.Identity, resource Resource, action Action) bool {
	allowed, err := p.enforcer.Enforce(subjectOf(identity), string(resource), string(action))
	return err == nil && allowed
}

// Authorize returns Forbidden unless identity may perform action on resource.
func (p *Policy) Authorize(identity domain.Identity, resource Resource, action Action) error {
	if !p.Can(identity, resource, action) {
		return apperrors.NewForbidden(fmt.Sprintf("not allowed to %s %s", action, resource))
	}
	return nil
}

// AuthorizeUserAccess guards reads and updates of a user record: admins may
// touch any user, everyone else only themselves.
func (p *Policy) AuthorizeUserAccess(identity domain.Identity, targetUserID int64, action Action) error {
	if err := p.Authorize(identity, ResourceUser, action); err != nil {
		return err
	}
	if !identity.Admin && !identity.Is(targetUserID) {
		return apperrors.NewForbidden("access to another user is not allowed")
	}
	return nil
}

// AuthorizeRoleChange guards role assignment. Only admins change roles and an
// admin may not give up their own admin role.
func (p *Policy) AuthorizeRoleChange(identity domain.Identity, targetUserID int64, grantsAdmin bool) error {
	if !identity.Admin {
		return apperrors.NewForbidden("only administrators can change roles")
	}
	if identity.Is(targetUserID) && !grantsAdmin {
		return apperrors.NewForbidden("administrators cannot remove their own admin role")
	}
	return nil
}

// AuthorizeStatusChange guards activation toggles with the same rules as roles.
func (p *Policy) AuthorizeStatusChange(identity domain.Identity, targetUserID int64, active bool) error {
	if !identity.Admin {
		return apperrors.NewForbidden("only administrators can change account status")
	}
	if identity.Is(targetUserID) && !active {
		return apperrors.NewForbidden("administrators cannot deactivate themselves")
	}
	return nil
}

// AuthorizeUserDeletion requires an admin deleting someone else. Whether the
// target still holds unresolved tickets is checked by the caller.
func (p *Policy) AuthorizeUserDeletion(identity domain.Identity, targetUserID int64) error {
	if err := p.Authorize(identity, ResourceUser, ActionDelete); err != nil {
		return err
	}
	if identity.Is(targetUserID) {
		return apperrors.NewForbidden("users cannot delete themselves")
	}
	return nil
}
