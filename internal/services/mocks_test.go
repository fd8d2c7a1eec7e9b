package services_test

import (
	"storefront/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) AddCartItem(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveCartItem(userID, productID string) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveCartItems(userID string, itemIDs []uint) error {
	args := m.Called(userID, itemIDs)
	return args.Error(0)
}

func (m *MockUserRepository) BumpVersion(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) FindByPriceBetween(minPrice, maxPrice int) ([]models.Product, error) {
	args := m.Called(minPrice, maxPrice)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByProducer(producer string) ([]models.Product, error) {
	args := m.Called(producer)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByProducerOrTitle(query string) ([]models.Product, error) {
	args := m.Called(query)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) PriceRange() (int, int, error) {
	args := m.Called()
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) IsOrdered(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}
