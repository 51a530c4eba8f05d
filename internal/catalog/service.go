package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
	"github.com/ivdgroup/medlab-backend/pkg/pagination"
)

// Service exposes catalog reads to the HTTP layer.
type Service interface {
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Autocomplete(ctx context.Context, query string) ([]ProductSummary, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Manufacturers(ctx context.Context) ([]models.Manufacturer, error)
}

type service struct {
	repo *Repository
	cfg  config.CatalogConfig
}

// NewService wires catalog dependencies.
func NewService(repo *Repository, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.DefaultPageSize
	}
	if cfg.AutocompleteLimit <= 0 {
		cfg.AutocompleteLimit = 10
	}
	if cfg.AutocompleteMinLen <= 0 {
		cfg.AutocompleteMinLen = 2
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	if query.Pagination.PageSize <= 0 {
		query.Pagination.PageSize = s.cfg.PageSize
	}
	query.Pagination = query.Pagination.Normalize()

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	summaries := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, Summarize(row))
	}

	return &ListResult{
		Products:   summaries,
		Total:      total,
		Page:       query.Pagination.Page,
		PageSize:   query.Pagination.PageSize,
		TotalPages: pagination.TotalPages(total, query.Pagination.PageSize),
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Autocomplete returns at most the configured number of matches. Queries
// shorter than the minimum length short-circuit to an empty list without
// touching the store.
func (s *service) Autocomplete(ctx context.Context, query string) ([]ProductSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < s.cfg.AutocompleteMinLen {
		return []ProductSummary{}, nil
	}

	rows, err := s.repo.Autocomplete(ctx, query, s.cfg.AutocompleteLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}

	summaries := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, Summarize(row))
	}
	return summaries, nil
}

func (s *service) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) Manufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	rows, err := s.repo.ListManufacturers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list manufacturers")
	}
	return rows, nil
}

// Summarize maps a product row to its listing shape. Shared with the
// bulk-order resolver so both surfaces return identical product payloads.
func Summarize(product models.Product) ProductSummary {
	summary := ProductSummary{
		ID:          product.ID,
		SKU:         product.SKU,
		Slug:        product.Slug,
		Name:        product.Name,
		Price:       product.Price,
		StockStatus: product.StockStatus.String(),
		IsFeatured:  product.IsFeatured,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
	}
	if product.Category != nil {
		summary.Category = &RefSummary{
			ID:   product.Category.ID,
			Name: product.Category.Name,
			Slug: product.Category.Slug,
		}
	}
	if product.Manufacturer != nil {
		summary.Manufacturer = &RefSummary{
			ID:   product.Manufacturer.ID,
			Name: product.Manufacturer.Name,
			Slug: product.Manufacturer.Slug,
		}
	}
	return summary
}

// Detail maps a product row to the full detail shape.
func Detail(product models.Product) ProductDetail {
	summary := Summarize(product)
	return ProductDetail{
		ID:            summary.ID,
		SKU:           summary.SKU,
		Slug:          summary.Slug,
		Name:          summary.Name,
		Description:   product.Description,
		Price:         summary.Price,
		StockStatus:   summary.StockStatus,
		StockQuantity: product.StockQuantity,
		IsFeatured:    summary.IsFeatured,
		ImageURL:      summary.ImageURL,
		Category:      summary.Category,
		Manufacturer:  summary.Manufacturer,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
