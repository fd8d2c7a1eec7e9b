package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are immutable once created, so there is no update or delete.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id uint) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	Latest() (*models.Order, error)
	Create(order *models.Order) error
}
