package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart line. Product data is snapshotted at add time so the cart
// renders without a catalog round trip.
type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	SKU       string          `json:"sku"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"imageUrl,omitempty"`
}

// Cart is the stored document, one per cart token.
type Cart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Totals is the rounded pricing quote attached to every cart response.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	Discount     decimal.Decimal `json:"discount"`
	VAT          decimal.Decimal `json:"vat"`
	Total        decimal.Decimal `json:"total"`
}

// Line is an item with its extended price.
type Line struct {
	Item
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// View is the cart payload returned to clients.
type View struct {
	Items  []Line `json:"items"`
	Totals Totals `json:"totals"`
}
