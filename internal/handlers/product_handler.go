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

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	auditor *audit.Interceptor
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, auditor *audit.Interceptor) *ProductHandler {
	return &ProductHandler{
		service: service,
		auditor: auditor,
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes need
// auth and a staff role.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleOwner)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/search", h.HandleSearch)
	productRoutes.Get("/price-range", h.HandlePriceRange)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", auth, staff, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, staff, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, staff, h.HandleDeleteProduct)
}

// HandleGetProducts lists products, optionally filtered by ?min=&max= or ?producer=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var (
		products []models.Product
		err      error
	)
	switch {
	case c.Query("min") != "" || c.Query("max") != "":
		minPrice, convErr := queryInt(c, "min", 0)
		if convErr != nil {
			return respondError(c, convErr)
		}
		maxPrice, convErr := queryInt(c, "max", int(^uint32(0)>>1))
		if convErr != nil {
			return respondError(c, convErr)
		}
		products, err = h.service.FindByPriceBetween(minPrice, maxPrice)
	case c.Query("producer") != "":
		products, err = h.service.FindByProducer(c.Query("producer"))
	default:
		products, err = h.service.GetAllProducts()
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleSearch matches ?q= against producer or title.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return respondError(c, apperr.BadRequest("query parameter q is required"))
	}
	products, err := h.service.SearchByProducerOrTitle(q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandlePriceRange returns the lowest and highest catalog prices.
func (h *ProductHandler) HandlePriceRange(c *fiber.Ctx) error {
	minPrice, maxPrice, err := h.service.PriceRange()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"min": minPrice, "max": maxPrice})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = ""

	err := audit.Run(c.UserContext(), h.auditor, h.service, "CreateProduct", []any{product}, func() error {
		return h.service.CreateProduct(&product)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct rewrites an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = c.Params("id")

	err := audit.Run(c.UserContext(), h.auditor, h.service, "UpdateProduct", []any{product}, func() error {
		return h.service.UpdateProduct(&product)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the catalog.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	err := audit.Run(c.UserContext(), h.auditor, h.service, "DeleteProduct", []any{id}, func() error {
		return h.service.DeleteProduct(id)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product " + id + " deleted successfully",
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest("query parameter %s must be an integer", key)
	}
	return v, nil
}
