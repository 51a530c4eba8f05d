package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivdgroup/medlab-backend/pkg/pagination"
)

// ListFilters narrows the catalog listing. All filters are conjunctive; a nil
// or empty filter means "no constraint".
type ListFilters struct {
	Search       string
	CategorySlug string
	ManufSlug    string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Featured     *bool
}

// ListQuery combines filters with offset pagination.
type ListQuery struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ProductSummary is the listing row shape returned to clients.
type ProductSummary struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	StockStatus  string          `json:"stockStatus"`
	IsFeatured   bool            `json:"isFeatured"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
	Category     *RefSummary     `json:"category,omitempty"`
	Manufacturer *RefSummary     `json:"manufacturer,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RefSummary is the slim category/manufacturer shape embedded in listings.
type RefSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductDetail is the full product shape served by the detail endpoint.
type ProductDetail struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockStatus   string          `json:"stockStatus"`
	StockQuantity int             `json:"stockQuantity"`
	IsFeatured    bool            `json:"isFeatured"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	Category      *RefSummary     `json:"category,omitempty"`
	Manufacturer  *RefSummary     `json:"manufacturer,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ListResult carries one page plus the separately-computed total.
type ListResult struct {
	Products   []ProductSummary `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}
