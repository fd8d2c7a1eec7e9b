package handlers

import (
	"storefront/internal/audit"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler exposes the caller's cart.
type CartHandler struct {
	service *services.UserService
	auditor *audit.Interceptor
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.UserService, auditor *audit.Interceptor) *CartHandler {
	return &CartHandler{service: service, auditor: auditor}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/:productId", h.HandleAddToCart)
	cartRoutes.Delete("/:productId", h.HandleRemoveFromCart)
}

// HandleGetCart lists the products in the caller's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	products, err := h.service.GetCart(id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleAddToCart appends one unit of a product to the cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	productID := c.Params("productId")

	user, err := audit.Call(c.UserContext(), h.auditor, h.service, "AddToCart", []any{id.UserID, productID}, func() (*models.User, error) {
		return h.service.AddToCart(id.UserID, productID)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user.CartProducts())
}

// HandleRemoveFromCart removes one unit of a product from the cart.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	productID := c.Params("productId")

	user, err := audit.Call(c.UserContext(), h.auditor, h.service, "RemoveFromCart", []any{id.UserID, productID}, func() (*models.User, error) {
		return h.service.RemoveFromCart(id.UserID, productID)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user.CartProducts())
}
