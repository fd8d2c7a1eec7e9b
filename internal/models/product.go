package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog item. Prices are whole currency units.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Producer    string         `json:"producer" gorm:"index;type:varchar(255);not null" validate:"required,max=255"`
	Year        int            `json:"year" validate:"required,gte=1000,lte=9999"`
	Country     string         `json:"country" gorm:"type:varchar(255)" validate:"required,max=255"`
	Description string         `json:"description" validate:"omitempty,max=2000"`
	Price       int            `json:"price" validate:"gte=0"`
	Quantity    int            `json:"quantity" validate:"gte=0"`
	Type        string         `json:"type" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
