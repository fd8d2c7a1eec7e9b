package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	FindByPriceBetween(minPrice, maxPrice int) ([]models.Product, error)
	FindByProducer(producer string) ([]models.Product, error)
	SearchByProducerOrTitle(query string) ([]models.Product, error)
	PriceRange() (minPrice, maxPrice int, err error)
	IsOrdered(id string) (bool, error)
}
