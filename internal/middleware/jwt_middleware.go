package middleware

import (
	"errors"
	"strings"

	"storefront/internal/identity"
	"storefront/internal/logger"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdentityLocal is the fiber.Ctx locals key holding the caller's identity.
const IdentityLocal = "identity"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// The caller's account is reloaded on every request, so the identity stored in
// the locals and the user context reflects its current username and role.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		id, err := authService.Authenticate(parts[1])
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				logger.L().Error("failed to load token account", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
				})
			}
			logger.L().Debug("JWT validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(IdentityLocal, id)
		c.SetUserContext(identity.With(c.UserContext(), id))

		return c.Next()
	}
}

// CurrentIdentity returns the identity attached by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(IdentityLocal).(identity.Identity)
	return id, ok
}
