package handlers

import (
	"storefront/internal/audit"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	auditor     *audit.Interceptor
	limiter     fiber.Handler
}

// NewAuthHandler creates a new AuthHandler. limiter guards the login route and may be nil.
func NewAuthHandler(authService *services.AuthService, auditor *audit.Interceptor, limiter fiber.Handler) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auditor:     auditor,
		limiter:     limiter,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	if h.limiter != nil {
		authRoutes.Post("/login", h.limiter, h.HandleLogin)
	} else {
		authRoutes.Post("/login", h.HandleLogin)
	}
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := audit.Call(c.UserContext(), h.auditor, h.authService, "RegisterUser", []any{req}, func() (*models.User, error) {
		return h.authService.RegisterUser(req)
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	token, err := h.authService.LoginUser(req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
