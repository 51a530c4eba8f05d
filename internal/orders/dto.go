package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/pricing"
)

// CheckoutItem references a catalog product by id.
type CheckoutItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CheckoutInput is the billing form plus the cart lines. Client-side totals
// are never part of the payload; the server re-derives them.
type CheckoutInput struct {
	CustomerName          string         `json:"customerName" validate:"required"`
	Email                 string         `json:"email" validate:"required,email"`
	Phone                 string         `json:"phone"`
	Company               string         `json:"company" validate:"required"`
	VATID                 string         `json:"vatId"`
	Address               string         `json:"address" validate:"required"`
	City                  string         `json:"city" validate:"required"`
	PostalCode            string         `json:"postalCode" validate:"required"`
	Country               string         `json:"country" validate:"required"`
	Department            string         `json:"department"`
	PONumber              string         `json:"poNumber"`
	PreferredDeliveryDate *time.Time     `json:"preferredDeliveryDate"`
	Notes                 string         `json:"notes"`
	Items                 []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// ItemView is one confirmed order line.
type ItemView struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// View is the order payload returned to clients. Totals come from the
// persisted snapshot and the discount rate is the one actually applied.
type View struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"orderNumber"`
	Status       string          `json:"status"`
	CustomerName string          `json:"customerName"`
	Company      string          `json:"company"`
	Email        string          `json:"email"`
	Items        []ItemView      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	Discount     decimal.Decimal `json:"discount"`
	VAT          decimal.Decimal `json:"vat"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// StatusInput is the admin transition payload.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

func toView(order *models.Order) *View {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, ItemView{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: pricing.Round(lineTotal),
		})
	}
	return &View{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status.String(),
		CustomerName: order.CustomerName,
		Company:      order.Company,
		Email:        order.Email,
		Items:        items,
		Subtotal:     order.Subtotal,
		DiscountRate: order.DiscountRate,
		Discount:     order.Discount,
		VAT:          order.VAT,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
	}
}
