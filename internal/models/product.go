package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusActive   = "active"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

// Product represents a product in the store.
type Product struct {
	ID            string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string           `json:"name" gorm:"type:varchar(200)" validate:"required,min=2,max=200"`
	Slug          string           `json:"slug" gorm:"uniqueIndex;type:varchar(200)" validate:"required,min=2,max=200"`
	Description   string           `json:"description" validate:"omitempty,max=5000"`
	Price         decimal.Decimal  `json:"price" gorm:"type:numeric(12,2)"`
	ComparePrice  *decimal.Decimal `json:"compare_price,omitempty" gorm:"type:numeric(12,2)"`
	CategoryID    *string          `json:"category_id,omitempty" gorm:"type:varchar(36);index"`
	Category      *Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ImageURL      string           `json:"image_url" validate:"omitempty,url"`
	GalleryURLs   []string         `json:"gallery_urls" gorm:"serializer:json"`
	Sizes         []string         `json:"sizes" gorm:"serializer:json"`
	Colors        []string         `json:"colors" gorm:"serializer:json"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	Featured      bool             `json:"featured"`
	Status        string           `json:"status" gorm:"type:varchar(20);index;default:active" validate:"omitempty,oneof=active draft archived"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductFilter narrows storefront product listings.
type ProductFilter struct {
	Status     string
	CategoryID string
	Featured   *bool
	Limit      int
}

// Category groups products for browsing.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"omitempty,max=1000"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
