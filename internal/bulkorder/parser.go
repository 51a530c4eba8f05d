package bulkorder

import (
	"regexp"
	"strconv"
	"strings"
)

// fieldSep splits a pasted line into SKU and quantity tokens. Buyers paste
// from spreadsheets and emails, so tabs, commas, semicolons, and runs of
// spaces all count as separators.
var fieldSep = regexp.MustCompile(`[\t,;\s]+`)

// Item is one parsed request line.
type Item struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

// ParseText turns a free-text block into items, one per line. Quantity is
// optional and defaults to 1; so does anything that fails to parse as a
// positive integer. Lines without a SKU token are dropped. Repeated SKUs
// are merged by summing quantities.
func ParseText(text string) []Item {
	var (
		items []Item
		index = map[string]int{}
	)

	for _, line := range strings.Split(text, "\n") {
		tokens := fieldSep.Split(strings.TrimSpace(line), -1)
		if len(tokens) == 0 || tokens[0] == "" {
			continue
		}

		sku := tokens[0]
		quantity := 1
		if len(tokens) > 1 {
			if parsed, err := strconv.Atoi(tokens[1]); err == nil && parsed > 0 {
				quantity = parsed
			}
		}

		key := strings.ToLower(sku)
		if at, ok := index[key]; ok {
			items[at].Quantity += quantity
			continue
		}
		index[key] = len(items)
		items = append(items, Item{SKU: sku, Quantity: quantity})
	}

	return items
}

// NormalizeItems applies the same defaulting rules to structured input.
func NormalizeItems(input []Item) []Item {
	var (
		items []Item
		index = map[string]int{}
	)

	for _, item := range input {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" {
			continue
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}

		key := strings.ToLower(sku)
		if at, ok := index[key]; ok {
			items[at].Quantity += quantity
			continue
		}
		index[key] = len(items)
		items = append(items, Item{SKU: sku, Quantity: quantity})
	}

	return items
}
