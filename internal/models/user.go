package models

import "time"

// Role is an authorization tag attached to every user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// User represents a customer or staff account. The cart lives on the user.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string     `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email     string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string     `json:"-" gorm:"type:varchar(255);not null"`
	Role      Role       `json:"role" gorm:"type:varchar(16);not null;default:USER"`
	Version   int        `json:"-" gorm:"not null;default:0"` // bumped by every checkout
	Cart      []CartItem `json:"cart" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one unit of a product in a user's cart. Repeated rows mean quantity.
type CartItem struct {
	ID        uint     `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    string   `json:"-" gorm:"index;type:varchar(36);not null"`
	ProductID string   `json:"productId" gorm:"index;type:varchar(36);not null"`
	Product   *Product `json:"product,omitempty"`
}

// CartProducts returns the products of the cart in row order.
func (u *User) CartProducts() []Product {
	products := make([]Product, 0, len(u.Cart))
	for _, item := range u.Cart {
		if item.Product != nil {
			products = append(products, *item.Product)
		}
	}
	return products
}
