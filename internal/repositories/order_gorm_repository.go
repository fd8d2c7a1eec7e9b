package repositories

import (
	"errors"
	"fmt"
	"storefront/internal/apperr"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

// GetAll retrieves every order in insertion order.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := withItems(r.db).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its products.
func (r *GORMOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := withItems(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves the orders placed by a user in insertion order.
func (r *GORMOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := withItems(r.db).Where("user_id = ?", userID).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders of user %s: %w", userID, err)
	}
	return orders, nil
}

// Latest returns the order with the greatest insertion sequence.
func (r *GORMOrderRepository) Latest() (*models.Order, error) {
	var order models.Order
	if err := withItems(r.db).Order("id DESC").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no orders placed yet: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest order: %w", err)
	}
	return &order, nil
}

// Create inserts an order together with its item rows. Items must carry
// ProductID only; products are never written through an order.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}
