package handlers

import (
	"storefront/internal/audit"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and user administration requests.
type UserHandler struct {
	service *services.UserService
	auditor *audit.Interceptor
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, auditor *audit.Interceptor) *UserHandler {
	return &UserHandler{service: service, auditor: auditor}
}

// RegisterRoutes registers the user routes behind auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleOwner)

	userRoutes := router.Group("/users", auth)
	userRoutes.Get("/", staff, h.HandleGetAllUsers)
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Put("/me", h.HandleUpdateProfile)
	userRoutes.Put("/:id", staff, h.HandleEditUser)
}

// HandleGetAllUsers lists every registered user.
func (h *UserHandler) HandleGetAllUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleGetMe returns the caller's own record.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	user, err := h.service.GetUser(id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleUpdateProfile changes the caller's email or password.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	var update services.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return badBody(c, err)
	}

	user, err := audit.Call(c.UserContext(), h.auditor, h.service, "UpdateProfile", []any{id.UserID, update}, func() (*models.User, error) {
		return h.service.UpdateProfile(id.UserID, update)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleEditUser renames a user or changes their role.
func (h *UserHandler) HandleEditUser(c *fiber.Ctx) error {
	userID := c.Params("id")

	var edit services.UserEdit
	if err := c.BodyParser(&edit); err != nil {
		return badBody(c, err)
	}

	user, err := audit.Call(c.UserContext(), h.auditor, h.service, "EditUser", []any{userID, edit}, func() (*models.User, error) {
		return h.service.EditUser(userID, edit)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
