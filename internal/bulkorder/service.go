package bulkorder

import (
	"context"
	"strings"

	"github.com/ivdgroup/medlab-backend/internal/catalog"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

// ProductFinder is the slice of the catalog repository the resolver needs.
type ProductFinder interface {
	FindBySKUs(ctx context.Context, skus []string) ([]models.Product, error)
}

// ResolvedProduct is a catalog match with the quantity the buyer asked for.
type ResolvedProduct struct {
	catalog.ProductSummary
	RequestedQuantity int `json:"requestedQuantity"`
}

// Result reports which pasted SKUs resolved and which did not.
type Result struct {
	Found    []ResolvedProduct `json:"found"`
	NotFound []string          `json:"notFound"`
}

// Service resolves pasted SKU lists against the catalog.
type Service interface {
	ResolveText(ctx context.Context, text string) (*Result, error)
	ResolveItems(ctx context.Context, items []Item) (*Result, error)
}

type service struct {
	finder ProductFinder
}

// NewService wires the resolver to the catalog.
func NewService(finder ProductFinder) (Service, error) {
	if finder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product finder required")
	}
	return &service{finder: finder}, nil
}

func (s *service) ResolveText(ctx context.Context, text string) (*Result, error) {
	return s.resolve(ctx, ParseText(text))
}

func (s *service) ResolveItems(ctx context.Context, items []Item) (*Result, error) {
	return s.resolve(ctx, NormalizeItems(items))
}

// resolve matches each parsed SKU case-insensitively against the catalog.
// No fuzzy or partial matching; an unmatched SKU is echoed back as typed.
func (s *service) resolve(ctx context.Context, items []Item) (*Result, error) {
	result := &Result{Found: []ResolvedProduct{}, NotFound: []string{}}
	if len(items) == 0 {
		return result, nil
	}

	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}

	rows, err := s.finder.FindBySKUs(ctx, skus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve skus")
	}

	bySKU := make(map[string]models.Product, len(rows))
	for _, row := range rows {
		bySKU[strings.ToLower(row.SKU)] = row
	}

	for _, item := range items {
		product, ok := bySKU[strings.ToLower(item.SKU)]
		if !ok {
			result.NotFound = append(result.NotFound, item.SKU)
			continue
		}
		result.Found = append(result.Found, ResolvedProduct{
			ProductSummary:    catalog.Summarize(product),
			RequestedQuantity: item.Quantity,
		})
	}

	return result, nil
}
