// Package invoice renders the order confirmation PDF attached to the
// checkout email.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/pricing"
)

const (
	sellerName    = "IVD Group"
	sellerTagline = "Medical & Laboratory Equipment"
)

// Generator renders order confirmations. Stateless; safe for concurrent use.
type Generator struct{}

// NewGenerator returns a PDF generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Render produces the confirmation PDF for a persisted order. All figures
// come from the order snapshot, never from the live catalog.
func (g *Generator) Render(order *models.Order) ([]byte, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(120, 10, sellerName)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 10, "Order Confirmation", "", 1, "R", false, 0, "")
	pdf.Cell(120, 6, sellerTagline)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, order.OrderNumber, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(120, 6, "")
	pdf.CellFormat(0, 6, order.CreatedAt.Format("2006-01-02"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	g.billingBlock(pdf, order)
	g.itemsTable(pdf, order.Items)
	g.totalsBlock(pdf, order)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5,
		"Payment by bank transfer. Our sales team will contact you with payment "+
			"details and delivery terms.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) billingBlock(pdf *fpdf.Fpdf, order *models.Order) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Billing Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	lines := []string{
		order.Company,
		order.CustomerName,
		order.Address,
		fmt.Sprintf("%s %s, %s", order.PostalCode, order.City, order.Country),
	}
	if order.VATID != "" {
		lines = append(lines, "VAT ID: "+order.VATID)
	}
	lines = append(lines, order.Email)
	if order.Phone != "" {
		lines = append(lines, order.Phone)
	}
	if order.PONumber != "" {
		lines = append(lines, "PO number: "+order.PONumber)
	}
	for _, line := range lines {
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (g *Generator) itemsTable(pdf *fpdf.Fpdf, items []models.OrderItem) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(30, 8, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(80, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Line Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		pdf.CellFormat(30, 7, item.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(lineTotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

type totalRow struct {
	label string
	value string
	bold  bool
}

func (g *Generator) totalsBlock(pdf *fpdf.Fpdf, order *models.Order) {
	rows := []totalRow{
		{"Subtotal", money(order.Subtotal), false},
	}
	if order.Discount.IsPositive() {
		ratePct := order.DiscountRate.Mul(decimal.NewFromInt(100))
		label := fmt.Sprintf("Volume discount (%s%%)", ratePct.StringFixed(0))
		rows = append(rows, totalRow{label, "-" + money(order.Discount), false})
	}
	rows = append(rows,
		totalRow{"VAT (23%)", money(order.VAT), false},
		totalRow{"Total", money(order.Total), true},
	)

	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(125, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, row.value, "", 1, "R", false, 0, "")
	}
}

func money(value decimal.Decimal) string {
	return pricing.Round(value).StringFixed(2) + " EUR"
}
