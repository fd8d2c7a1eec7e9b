package handlers

import (
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/audit"
	"storefront/internal/middleware"
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler lets staff correlate the START and END records of a call.
type AuditHandler struct {
	auditor *audit.Interceptor
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditor *audit.Interceptor) *AuditHandler {
	return &AuditHandler{auditor: auditor}
}

// RegisterRoutes registers the audit lookup route for staff.
func (h *AuditHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/audit/:token", auth, middleware.RequireRole(models.RoleAdmin, models.RoleOwner), h.HandleGetEvents)
}

// HandleGetEvents returns every event recorded under a correlation token.
func (h *AuditHandler) HandleGetEvents(c *fiber.Ctx) error {
	token := c.Params("token")
	if len(token) != audit.TokenLength {
		return respondError(c, apperr.BadRequest("token must be %d characters", audit.TokenLength))
	}

	events, err := h.auditor.Events(token)
	if err != nil {
		return respondError(c, err)
	}
	if len(events) == 0 {
		return respondError(c, fmt.Errorf("no audit events for token %s: %w", token, apperr.ErrNotFound))
	}
	return c.JSON(events)
}
