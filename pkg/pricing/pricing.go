// Package pricing is the single source of truth for order totals. Every
// surface that displays or persists money (cart quote, checkout, order
// confirmation, the PDF invoice) derives its numbers here so the figures can
// never drift apart.
package pricing

import "github.com/shopspring/decimal"

var (
	vatRate = decimal.NewFromFloat(0.23)

	tierTenThreshold  = decimal.NewFromInt(100_000)
	tierFiveThreshold = decimal.NewFromInt(50_000)

	rateTen  = decimal.NewFromFloat(0.10)
	rateFive = decimal.NewFromFloat(0.05)
)

// Line is one cart or checkout entry priced at its snapshot unit price.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote carries the derived totals. Values are exact; callers round to two
// decimals only when formatting for persistence or display.
type Quote struct {
	Subtotal     decimal.Decimal
	DiscountRate decimal.Decimal
	Discount     decimal.Decimal
	Taxable      decimal.Decimal
	VAT          decimal.Decimal
	Total        decimal.Decimal
}

// Calculate derives the volume-tiered totals for the given lines. Tier lower
// bounds are inclusive: a subtotal of exactly 50,000 earns the 5% rate and
// exactly 100,000 earns 10%. An empty cart yields all-zero values.
func Calculate(lines []Line) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	rate := discountRate(subtotal)
	discount := subtotal.Mul(rate)
	taxable := subtotal.Sub(discount)
	vat := taxable.Mul(vatRate)

	return Quote{
		Subtotal:     subtotal,
		DiscountRate: rate,
		Discount:     discount,
		Taxable:      taxable,
		VAT:          vat,
		Total:        taxable.Add(vat),
	}
}

func discountRate(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(tierTenThreshold):
		return rateTen
	case subtotal.GreaterThanOrEqual(tierFiveThreshold):
		return rateFive
	default:
		return decimal.Zero
	}
}

// Round clamps a monetary value to two decimals for persistence or display.
func Round(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
