package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/enums"
)

// Product is a catalog listing. SKU and slug are immutable identity; price
// and stock are mutated by the operator import.
type Product struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SKU            string            `gorm:"column:sku;uniqueIndex;not null"`
	Slug           string            `gorm:"column:slug;uniqueIndex;not null"`
	Name           string            `gorm:"column:name;not null"`
	Description    string            `gorm:"column:description;not null;default:''"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	CategoryID     *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	ManufacturerID *uuid.UUID        `gorm:"column:manufacturer_id;type:uuid"`
	StockStatus    enums.StockStatus `gorm:"column:stock_status;not null;default:'in_stock'"`
	StockQuantity  int               `gorm:"column:stock_quantity;not null;default:0"`
	IsFeatured     bool              `gorm:"column:is_featured;not null;default:false"`
	ImageURL       *string           `gorm:"column:image_url"`
	Category       *Category         `gorm:"foreignKey:CategoryID"`
	Manufacturer   *Manufacturer     `gorm:"foreignKey:ManufacturerID"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
