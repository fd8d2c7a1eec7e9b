package models

import "time"

// ShippingDetails is the checkout form submitted by the customer.
type ShippingDetails struct {
	FirstName   string `json:"firstName" validate:"required,notblank"`
	LastName    string `json:"lastName" validate:"required,notblank"`
	City        string `json:"city" validate:"required,notblank"`
	Address     string `json:"address" validate:"required,notblank"`
	PostIndex   string `json:"postIndex" validate:"required,notblank"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,notblank"`
	TotalPrice  int    `json:"totalPrice" validate:"gte=0"`
}

// Order is a placed purchase. It is written once at checkout and never mutated.
// ID is auto-incremented and doubles as the insertion sequence.
type Order struct {
	ID          uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      string      `json:"userId" gorm:"index;type:varchar(36);not null"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalPrice  int         `json:"totalPrice"`
	FirstName   string      `json:"firstName" gorm:"type:varchar(255)"`
	LastName    string      `json:"lastName" gorm:"type:varchar(255)"`
	City        string      `json:"city" gorm:"type:varchar(255)"`
	Address     string      `json:"address" gorm:"type:varchar(255)"`
	PostIndex   string      `json:"postIndex" gorm:"type:varchar(32)"`
	Email       string      `json:"email" gorm:"type:varchar(255)"`
	PhoneNumber string      `json:"phoneNumber" gorm:"type:varchar(64)"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OrderItem is a product reference copied from the cart at checkout time.
type OrderItem struct {
	ID        uint     `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   uint     `json:"-" gorm:"index;not null"`
	ProductID string   `json:"productId" gorm:"index;type:varchar(36);not null"`
	Product   *Product `json:"product,omitempty"`
}

// Products returns the products of the order in row order.
func (o *Order) Products() []Product {
	products := make([]Product, 0, len(o.Items))
	for _, item := range o.Items {
		if item.Product != nil {
			products = append(products, *item.Product)
		}
	}
	return products
}
