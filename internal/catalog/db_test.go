package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Category{},
		&models.Manufacturer{},
		&models.Product{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateCategory(t *testing.T, conn *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return category
}

func mustCreateManufacturer(t *testing.T, conn *gorm.DB, name, slug string) *models.Manufacturer {
	t.Helper()
	manufacturer := &models.Manufacturer{Name: name, Slug: slug}
	if err := conn.Create(manufacturer).Error; err != nil {
		t.Fatalf("create manufacturer %s: %v", slug, err)
	}
	return manufacturer
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, product *models.Product) *models.Product {
	t.Helper()
	if product.StockStatus == "" {
		product.StockStatus = enums.StockStatusInStock
	}
	if product.Price.IsZero() {
		product.Price = decimal.NewFromFloat(99.90)
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product %s: %v", product.SKU, err)
	}
	return product
}
