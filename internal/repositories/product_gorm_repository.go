package repositories

import (
	"errors"
	"fmt"
	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("created_at, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product with ID %s already exists: %w", product.ID, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{ID: product.ID}).
		Select("title", "producer", "year", "country", "description", "price", "quantity", "type", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, apperr.ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a product so that placed orders keep resolving it.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// FindByPriceBetween returns products priced within [minPrice, maxPrice], cheapest first.
func (r *GORMProductRepository) FindByPriceBetween(minPrice, maxPrice int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("price BETWEEN ? AND ?", minPrice, maxPrice).Order("price, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by price: %w", err)
	}
	return products, nil
}

// FindByProducer returns every product of the given producer.
func (r *GORMProductRepository) FindByProducer(producer string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("producer = ?", producer).Order("title, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by producer: %w", err)
	}
	return products, nil
}

// SearchByProducerOrTitle matches query exactly against producer or title.
func (r *GORMProductRepository) SearchByProducerOrTitle(query string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("producer = ? OR title = ?", query, query).Order("title, id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// PriceRange returns the cheapest and the most expensive catalog price.
func (r *GORMProductRepository) PriceRange() (int, int, error) {
	var row struct {
		Count    int64
		MinPrice int
		MaxPrice int
	}
	err := r.db.Model(&models.Product{}).
		Select("COUNT(*) AS count, COALESCE(MIN(price), 0) AS min_price, COALESCE(MAX(price), 0) AS max_price").
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get price range: %w", err)
	}
	if row.Count == 0 {
		return 0, 0, fmt.Errorf("catalog is empty: %w", apperr.ErrNotFound)
	}
	return row.MinPrice, row.MaxPrice, nil
}

// IsOrdered reports whether any placed order references the product.
func (r *GORMProductRepository) IsOrdered(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check orders for product %s: %w", id, err)
	}
	return count > 0, nil
}
