package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/audit"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application bundles the HTTP app with the resources it owns.
type application struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	mq  *rabbitmq.Client
	app *fiber.App
}

// newApplication opens the database and broker and wires every layer.
func newApplication(cfg *config.Config, log *zap.Logger) (*application, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	a := &application{cfg: cfg, log: log, db: db}

	// A nil *Client must not leak into the EventPublisher interface.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			closeDB(db)
			return nil, err
		}
		a.mq = mq
		publisher = mq
	} else {
		log.Info("RABBITMQ_URL not set, order events disabled")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	auditRepo := repositories.NewGORMAuditRepository(db)

	if cfg.SeedCatalog {
		seedCatalog(productRepo, log)
	}

	// --- Services ---
	auditor := audit.NewInterceptor(log, auditRepo)
	productService := services.NewProductService(productRepo)
	userService := services.NewUserService(userRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, repositories.NewGORMTransactor(db), publisher).
		RecomputeTotals(cfg.RecomputeTotal)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, auditor)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)

	handlers.NewAuthHandler(authService, auditor, loginLimiter.Handler()).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, auditor).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(userService, auditor).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(orderService, auditor).RegisterRoutes(apiV1, auth)
	handlers.NewUserHandler(userService, auditor).RegisterRoutes(apiV1, auth)
	handlers.NewAuditHandler(auditor).RegisterRoutes(apiV1, auth)

	app.Get("/health", a.health)

	a.app = app
	return a, nil
}

// startConsumer attaches the order event consumer when a broker is configured.
func (a *application) startConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeOrderEvents(orderEventHandler(a.log))
}

func (a *application) health(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "up",
		"rabbitmq": "disabled",
	}
	if a.mq != nil {
		body["rabbitmq"] = "connected"
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		a.log.Warn("health check: database unreachable", zap.Error(err))
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "down"
	}
	return c.Status(status).JSON(body)
}

// close releases the broker and database.
func (a *application) close() error {
	var err error
	if a.mq != nil {
		err = multierr.Append(err, a.mq.Close())
	}
	if sqlDB, dbErr := a.db.DB(); dbErr == nil {
		err = multierr.Append(err, sqlDB.Close())
	}
	return err
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// errorHandler renders errors that escape the handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

// orderEventHandler logs order events; other routing keys are acknowledged and ignored.
func orderEventHandler(log *zap.Logger) func(routingKey string, body []byte) error {
	return func(routingKey string, body []byte) error {
		if routingKey != rabbitmq.OrderPlacedKey {
			log.Debug("ignoring order event", zap.String("routing_key", routingKey))
			return nil
		}

		var event services.OrderPlacedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", routingKey, err)
		}

		log.Info("order event received",
			zap.Uint("orderId", event.OrderID),
			zap.String("username", event.Username),
			zap.Int("totalPrice", event.TotalPrice),
			zap.Int("items", len(event.ProductIDs)),
		)
		return nil
	}
}

// seedCatalog fills an empty catalog with a few demo products.
func seedCatalog(repo repositories.ProductRepository, log *zap.Logger) {
	existing, err := repo.GetAll()
	if err != nil {
		log.Warn("error reading catalog before seeding", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Title: "Chanel No 5", Producer: "Chanel", Year: 1921, Country: "France", Price: 120, Quantity: 20, Type: "Eau de parfum"},
		{Title: "Sauvage", Producer: "Dior", Year: 2015, Country: "France", Price: 95, Quantity: 35, Type: "Eau de toilette"},
		{Title: "Acqua di Gio", Producer: "Giorgio Armani", Year: 1996, Country: "Italy", Price: 80, Quantity: 40, Type: "Eau de toilette"},
		{Title: "Light Blue", Producer: "Dolce & Gabbana", Year: 2001, Country: "Italy", Price: 70, Quantity: 25, Type: "Eau de toilette"},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Warn("error seeding product", zap.String("title", products[i].Title), zap.Error(err))
			continue
		}
		log.Info("seeded product", zap.String("title", products[i].Title), zap.String("id", products[i].ID))
	}
}
