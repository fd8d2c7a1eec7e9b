package repositories

import "storefront/internal/models"

// UserRepository defines the interface for user and cart data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll() ([]models.User, error)
	Update(user *models.User) error

	AddCartItem(userID, productID string) error
	RemoveCartItem(userID, productID string) error
	// RemoveCartItems deletes exactly the listed cart rows of the user.
	RemoveCartItems(userID string, itemIDs []uint) error

	// BumpVersion increments the user's version if it still equals user.Version.
	// A stale copy yields apperr.ErrConflict.
	BumpVersion(user *models.User) error
}
