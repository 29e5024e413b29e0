package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// RequireUser ensures an authenticated account.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireOperator ensures the caller carries the staff flag.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsOperator() {
			return apperrors.NewForbidden("operator privilege required")
		}
		return c.Next()
	}
}
