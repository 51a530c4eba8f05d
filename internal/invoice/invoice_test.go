package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-1700000000000-AB12C",
		CustomerName:  "Lab Manager",
		Email:         "lab@example.com",
		Company:       "Example Diagnostics",
		VATID:         "PL1234567890",
		Address:       "Science Park 1",
		City:          "Warsaw",
		PostalCode:    "00-001",
		Country:       "Poland",
		PONumber:      "PO-2026-014",
		PaymentMethod: enums.PaymentMethodBankTransfer,
		Subtotal:      decimal.NewFromInt(60_000),
		DiscountRate:  decimal.NewFromFloat(0.05),
		Discount:      decimal.NewFromInt(3000),
		VAT:           decimal.NewFromFloat(13110),
		Total:         decimal.NewFromFloat(70110),
		Status:        enums.OrderStatusPending,
		Items: []models.OrderItem{
			{SKU: "HEM-100", Name: "Hematology Analyzer BC-20", Quantity: 1, UnitPrice: decimal.NewFromInt(45_000)},
			{SKU: "CHEM-50", Name: "Reagent Kit", Quantity: 30, UnitPrice: decimal.NewFromInt(500)},
		},
		CreatedAt: time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := NewGenerator().Render(sampleOrder())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected pdf bytes")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf header, got %q", data[:8])
	}
}

func TestRenderWithoutDiscount(t *testing.T) {
	order := sampleOrder()
	order.Subtotal = decimal.NewFromInt(100)
	order.DiscountRate = decimal.Zero
	order.Discount = decimal.Zero
	order.VAT = decimal.NewFromInt(23)
	order.Total = decimal.NewFromInt(123)

	data, err := NewGenerator().Render(order)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected pdf bytes")
	}
}

func TestRenderRequiresOrder(t *testing.T) {
	if _, err := NewGenerator().Render(nil); err == nil {
		t.Fatal("expected error for nil order")
	}
}
