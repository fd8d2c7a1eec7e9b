package handlers

import (
	"strconv"

	"storefront/internal/apperr"
	"storefront/internal/audit"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
	auditor      *audit.Interceptor
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, auditor *audit.Interceptor) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		auditor:      auditor,
	}
}

// RegisterRoutes registers the order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleOwner)

	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Get("/latest", h.HandleGetLatestOrder)
	orderRoutes.Get("/mine", h.HandleGetMyOrders)
	orderRoutes.Get("/", staff, h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandlePlaceOrder checks out the caller's cart.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	var details models.ShippingDetails
	if err := c.BodyParser(&details); err != nil {
		return badBody(c, err)
	}

	order, err := audit.Call(c.UserContext(), h.auditor, h.orderService, "PlaceOrder", []any{details}, func() (*models.Order, error) {
		return h.orderService.PlaceOrder(id, details)
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetLatestOrder returns the newest order: store-wide for staff, the
// caller's own otherwise.
func (h *OrderHandler) HandleGetLatestOrder(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	var (
		order *models.Order
		err   error
	)
	if services.IsStaff(id.Role) {
		order, err = h.orderService.LatestOrder()
	} else {
		order, err = h.orderService.LatestOrderFor(id.UserID)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleGetMyOrders lists the caller's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	orders, err := h.orderService.OrdersForUser(id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetAllOrders lists every order in the store.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.AllOrders()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, apperr.BadRequest("invalid order id %q", c.Params("id")))
	}

	order, err := h.orderService.GetOrderByID(id, uint(orderID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
