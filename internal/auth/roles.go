package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// RequirePermission rejects callers whose role may not perform action on
// resource. Ownership rules are left to the services.
func RequirePermission(policy *authz.Policy, resource authz.Resource, action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := policy.Authorize(identity, resource, action); err != nil {
			return err
		}
		return c.Next()
	}
}
