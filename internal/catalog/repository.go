package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
)

// Repository wires product, category, and manufacturer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads a product with its category and manufacturer.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Manufacturer").
		First(&product, "slug = ?", slug).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKUs returns products whose SKU matches any input, case-insensitively.
func (r *Repository) FindBySKUs(ctx context.Context, skus []string) ([]models.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	lowered := make([]string, 0, len(skus))
	for _, sku := range skus {
		lowered = append(lowered, strings.ToLower(sku))
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Manufacturer").
		Where("LOWER(sku) IN ?", lowered).
		Find(&rows).
		Error
	return rows, err
}

// List returns one catalog page plus the total matching count.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	base := r.filtered(ctx, query.Filters)

	var total int64
	if err := base.Session(&gorm.Session{}).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("Manufacturer").
		Order("products.created_at DESC").
		Order("products.id").
		Offset(query.Pagination.Offset()).
		Limit(query.Pagination.Limit()).
		Find(&rows).
		Error
	return rows, total, err
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.Product{})

	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ? OR LOWER(products.description) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if slug := strings.TrimSpace(filters.CategorySlug); slug != "" {
		qb = qb.Where("products.category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", slug))
	}
	if slug := strings.TrimSpace(filters.ManufSlug); slug != "" {
		qb = qb.Where("products.manufacturer_id IN (?)",
			r.db.Model(&models.Manufacturer{}).Select("id").Where("slug = ?", slug))
	}
	if filters.MinPrice != nil {
		qb = qb.Where("products.price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		qb = qb.Where("products.price <= ?", filters.MaxPrice)
	}
	if filters.Featured != nil {
		qb = qb.Where("products.is_featured = ?", *filters.Featured)
	}

	return qb
}

// Autocomplete matches the query against SKU and name, ordered for the
// search dropdown.
func (r *Repository) Autocomplete(ctx context.Context, query string, limit int) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Manufacturer").
		Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("sku").
		Order("name").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name").Find(&rows).Error
	return rows, err
}

// ListManufacturers returns all manufacturers ordered by name.
func (r *Repository) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	var rows []models.Manufacturer
	err := r.db.WithContext(ctx).Order("name").Find(&rows).Error
	return rows, err
}

// CountProducts returns the catalog size for the admin dashboard.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// UpsertBySKU inserts the product or refreshes price/stock for an existing
// SKU. Used by the operator CSV import.
func (r *Repository) UpsertBySKU(ctx context.Context, product *models.Product) (created bool, err error) {
	var existing models.Product
	err = r.db.WithContext(ctx).First(&existing, "LOWER(sku) = ?", strings.ToLower(product.SKU)).Error
	if err == gorm.ErrRecordNotFound {
		return true, r.db.WithContext(ctx).Create(product).Error
	}
	if err != nil {
		return false, err
	}

	updates := map[string]any{
		"name":           product.Name,
		"price":          product.Price,
		"stock_status":   product.StockStatus,
		"stock_quantity": product.StockQuantity,
	}
	if product.Description != "" {
		updates["description"] = product.Description
	}
	if product.CategoryID != nil {
		updates["category_id"] = product.CategoryID
	}
	if product.ManufacturerID != nil {
		updates["manufacturer_id"] = product.ManufacturerID
	}
	return false, r.db.WithContext(ctx).Model(&existing).Updates(updates).Error
}
