package repositories

import (
	"errors"
	"fmt"
	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// withCart preloads cart rows in insertion order, including soft-deleted products.
func withCart(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Cart", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Cart.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

// Create creates a new user in the database. Duplicate usernames or emails
// are rejected by unique indexes and reported as apperr.ErrConflict.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := r.db.Omit("Cart").Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user '%s' already exists: %w", user.Username, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user and their cart by username.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username, "username "+username)
}

// GetByEmail retrieves a user and their cart by email.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email, "email "+email)
}

// GetByID retrieves a user and their cart by ID.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.first("id = ?", id, "ID "+id)
}

func (r *GORMUserRepository) first(query, arg, what string) (*models.User, error) {
	var user models.User
	if err := withCart(r.db).First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s: %w", what, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", what, err)
	}
	return &user, nil
}

// GetAll retrieves every user without carts.
func (r *GORMUserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// Update writes the profile columns of user. The cart is managed separately.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(&models.User{ID: user.ID}).
		Select("username", "email", "password", "role", "updated_at").
		Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("username or email already taken: %w", apperr.ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, apperr.ErrNotFound)
	}
	return nil
}

// AddCartItem appends one unit of a product to the user's cart.
func (r *GORMUserRepository) AddCartItem(userID, productID string) error {
	if err := r.db.Create(&models.CartItem{UserID: userID, ProductID: productID}).Error; err != nil {
		return fmt.Errorf("failed to add product %s to cart: %w", productID, err)
	}
	return nil
}

// RemoveCartItem removes a single unit of a product from the user's cart.
func (r *GORMUserRepository) RemoveCartItem(userID, productID string) error {
	var item models.CartItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Order("id").First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %s in cart: %w", productID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to find cart item: %w", err)
	}
	if err := r.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to remove product %s from cart: %w", productID, err)
	}
	return nil
}

// RemoveCartItems deletes the given cart rows of the user. Rows added by a
// concurrent request are left alone.
func (r *GORMUserRepository) RemoveCartItems(userID string, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	res := r.db.Where("user_id = ? AND id IN ?", userID, itemIDs).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart items of user %s: %w", userID, res.Error)
	}
	if res.RowsAffected != int64(len(itemIDs)) {
		return fmt.Errorf("cart of user %s changed during checkout: %w", userID, apperr.ErrConflict)
	}
	return nil
}

// BumpVersion performs the optimistic version check used to serialize checkouts.
func (r *GORMUserRepository) BumpVersion(user *models.User) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		UpdateColumn("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to bump version of user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s was modified concurrently: %w", user.Username, apperr.ErrConflict)
	}
	user.Version++
	return nil
}
