package services

import (
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: apperr.NewValidator(),
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := apperr.FromValidator(s.validate.Struct(product)); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct validates and rewrites a product. Products referenced by a
// placed order are frozen.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := apperr.FromValidator(s.validate.Struct(product)); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(product.ID); err != nil {
		return err
	}
	ordered, err := s.repo.IsOrdered(product.ID)
	if err != nil {
		return err
	}
	if ordered {
		return fmt.Errorf("product %s is part of a placed order: %w", product.ID, apperr.ErrConflict)
	}
	return s.repo.Update(product)
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// FindByPriceBetween lists products priced within [minPrice, maxPrice].
func (s *ProductService) FindByPriceBetween(minPrice, maxPrice int) ([]models.Product, error) {
	if minPrice > maxPrice {
		return nil, apperr.BadRequest("min price %d is greater than max price %d", minPrice, maxPrice)
	}
	return s.repo.FindByPriceBetween(minPrice, maxPrice)
}

// FindByProducer lists the products of one producer.
func (s *ProductService) FindByProducer(producer string) ([]models.Product, error) {
	return s.repo.FindByProducer(producer)
}

// SearchByProducerOrTitle lists products whose producer or title equals query.
func (s *ProductService) SearchByProducerOrTitle(query string) ([]models.Product, error) {
	return s.repo.SearchByProducerOrTitle(query)
}

// PriceRange returns the lowest and highest catalog prices.
func (s *ProductService) PriceRange() (int, int, error) {
	return s.repo.PriceRange()
}
