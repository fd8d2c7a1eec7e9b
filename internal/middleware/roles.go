package middleware

import (
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through only if the caller holds one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		for _, r := range roles {
			if models.Role(id.Role) == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Insufficient role",
		})
	}
}
