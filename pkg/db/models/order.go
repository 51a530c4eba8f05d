package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/enums"
)

// Order is created once at checkout; only its status is mutated afterwards.
// Totals are two-decimal snapshots derived server-side at submission time.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber           string              `gorm:"column:order_number;uniqueIndex;not null"`
	UserID                *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	CustomerName          string              `gorm:"column:customer_name;not null"`
	Email                 string              `gorm:"column:email;not null"`
	Phone                 string              `gorm:"column:phone;not null;default:''"`
	Company               string              `gorm:"column:company;not null"`
	VATID                 string              `gorm:"column:vat_id;not null;default:''"`
	Address               string              `gorm:"column:address;not null"`
	City                  string              `gorm:"column:city;not null"`
	PostalCode            string              `gorm:"column:postal_code;not null"`
	Country               string              `gorm:"column:country;not null"`
	Department            string              `gorm:"column:department;not null;default:''"`
	PONumber              string              `gorm:"column:po_number;not null;default:''"`
	PreferredDeliveryDate *time.Time          `gorm:"column:preferred_delivery_date"`
	Notes                 string              `gorm:"column:notes;not null;default:''"`
	PaymentMethod         enums.PaymentMethod `gorm:"column:payment_method;not null;default:'bank_transfer'"`
	Subtotal              decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,2);not null"`
	Discount              decimal.Decimal     `gorm:"column:discount;type:numeric(14,2);not null"`
	DiscountRate          decimal.Decimal     `gorm:"column:discount_rate;type:numeric(4,2);not null"`
	VAT                   decimal.Decimal     `gorm:"column:vat;type:numeric(14,2);not null"`
	Total                 decimal.Decimal     `gorm:"column:total;type:numeric(14,2);not null"`
	Status                enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	Items                 []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
