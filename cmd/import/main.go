package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ivdgroup/medlab-backend/internal/catalog"
	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
)

// Expected header: sku,name,price,category,manufacturer,stock
// Category and manufacturer columns hold slugs of existing rows; unknown
// slugs leave the reference empty rather than failing the row.

func main() {
	logg := logger.New(logger.Options{ServiceName: "import"})

	_ = godotenv.Load()

	file := flag.String("file", "", "path to the product CSV")
	flag.Parse()
	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"file": *file,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	repo := catalog.NewRepository(client.DB())

	categories, err := refIndex(ctx, repo)
	if err != nil {
		logg.Error(ctx, "failed to load reference data", err)
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logg.Error(ctx, "failed to open csv", err)
		os.Exit(1)
	}
	defer f.Close()

	created, updated, skipped, err := importProducts(ctx, logg, repo, categories, csv.NewReader(f))
	if err != nil {
		logg.Error(ctx, "import failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
	logg.Info(ctx, "import complete")
}

type refs struct {
	categories    map[string]uuid.UUID
	manufacturers map[string]uuid.UUID
}

func refIndex(ctx context.Context, repo *catalog.Repository) (*refs, error) {
	idx := &refs{
		categories:    map[string]uuid.UUID{},
		manufacturers: map[string]uuid.UUID{},
	}
	categories, err := repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		idx.categories[c.Slug] = c.ID
	}
	manufacturers, err := repo.ListManufacturers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	for _, m := range manufacturers {
		idx.manufacturers[m.Slug] = m.ID
	}
	return idx, nil
}

func importProducts(ctx context.Context, logg *logger.Logger, repo *catalog.Repository, idx *refs, reader *csv.Reader) (created, updated, skipped int, err error) {
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return 0, 0, 0, fmt.Errorf("read header: %w", err)
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return created, updated, skipped, nil
		}
		if err != nil {
			return created, updated, skipped, fmt.Errorf("read line %d: %w", line+1, err)
		}
		line++

		product, rowErr := parseRow(record, idx)
		if rowErr != nil {
			skipped++
			rowCtx := logg.WithFields(ctx, map[string]any{"line": line, "reason": rowErr.Error()})
			logg.Warn(rowCtx, "skipping row")
			continue
		}

		wasCreated, err := repo.UpsertBySKU(ctx, product)
		if err != nil {
			return created, updated, skipped, fmt.Errorf("upsert %s: %w", product.SKU, err)
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}
}

func parseRow(record []string, idx *refs) (*models.Product, error) {
	sku := strings.TrimSpace(record[0])
	name := strings.TrimSpace(record[1])
	if sku == "" || name == "" {
		return nil, fmt.Errorf("sku and name are required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", record[2])
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("negative price %q", record[2])
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("invalid stock %q", record[5])
	}

	status := enums.StockStatusInStock
	if stock == 0 {
		status = enums.StockStatusOnRequest
	}

	product := &models.Product{
		SKU:           sku,
		Slug:          catalog.Slugify(name),
		Name:          name,
		Price:         price,
		StockStatus:   status,
		StockQuantity: stock,
	}
	if slug := strings.TrimSpace(record[3]); slug != "" {
		if id, ok := idx.categories[slug]; ok {
			product.CategoryID = &id
		}
	}
	if slug := strings.TrimSpace(record[4]); slug != "" {
		if id, ok := idx.manufacturers[slug]; ok {
			product.ManufacturerID = &id
		}
	}
	return product, nil
}
