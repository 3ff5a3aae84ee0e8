package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/domain"
)

// RequireRole ensures the authenticated principal satisfies the required role.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return unauthenticated()
		}
		if err := Authorize(principal.Role, required); err != nil {
			return err
		}
		return c.Next()
	}
}
