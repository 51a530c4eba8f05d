package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
	"github.com/ivdgroup/medlab-backend/pkg/pricing"
)

// ProductLoader is the slice of the catalog the cart needs.
type ProductLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// OrderLoader looks up a past order for the reorder flow.
type OrderLoader interface {
	FindForUserByNumber(ctx context.Context, orderNumber string, userID uuid.UUID) (*models.Order, error)
}

// Service manages token-scoped carts.
type Service interface {
	Get(ctx context.Context, token string) (*View, error)
	Add(ctx context.Context, token string, productID uuid.UUID, quantity int) (*View, error)
	SetQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*View, error)
	Remove(ctx context.Context, token string, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, token string) error
	Reorder(ctx context.Context, token string, orderNumber string, userID uuid.UUID) (*View, error)
}

type service struct {
	store    Store
	products ProductLoader
	orders   OrderLoader
}

// NewService wires the cart to its stores.
func NewService(store Store, products ProductLoader, orders OrderLoader) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart store required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product loader required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order loader required")
	}
	return &service{store: store, products: products, orders: orders}, nil
}

func (s *service) Get(ctx context.Context, token string) (*View, error) {
	cart, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	return buildView(cart), nil
}

// Add merges the product into the cart, incrementing quantity when the
// product id is already present.
func (s *service) Add(ctx context.Context, token string, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	cart, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, Item{
			ProductID: product.ID,
			SKU:       product.SKU,
			Slug:      product.Slug,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			ImageURL:  product.ImageURL,
		})
	}

	return s.persist(ctx, token, cart)
}

// SetQuantity replaces the line quantity; zero or less removes the line.
func (s *service) SetQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*View, error) {
	cart, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	found := false
	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
			continue
		}
		found = true
		if quantity > 0 {
			item.Quantity = quantity
			items = append(items, item)
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	cart.Items = items

	return s.persist(ctx, token, cart)
}

func (s *service) Remove(ctx context.Context, token string, productID uuid.UUID) (*View, error) {
	return s.SetQuantity(ctx, token, productID, 0)
}

func (s *service) Clear(ctx context.Context, token string) error {
	if err := s.store.Delete(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Reorder merges a past order's lines into the cart using the snapshot
// prices from the order, incrementing quantities for products already
// present.
func (s *service) Reorder(ctx context.Context, token string, orderNumber string, userID uuid.UUID) (*View, error) {
	order, err := s.orders.FindForUserByNumber(ctx, orderNumber, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	cart, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	for _, line := range order.Items {
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == line.ProductID {
				cart.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		item := Item{
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
		if line.Product != nil {
			item.Slug = line.Product.Slug
			item.ImageURL = line.Product.ImageURL
		}
		cart.Items = append(cart.Items, item)
	}

	return s.persist(ctx, token, cart)
}

func (s *service) load(ctx context.Context, token string) (*Cart, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token required")
	}
	cart, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) persist(ctx context.Context, token string, cart *Cart) (*View, error) {
	if err := s.store.Save(ctx, token, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return buildView(cart), nil
}

func buildView(cart *Cart) *View {
	lines := make([]pricing.Line, 0, len(cart.Items))
	viewLines := make([]Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		viewLines = append(viewLines, Line{Item: item, LineTotal: pricing.Round(lineTotal)})
	}

	quote := pricing.Calculate(lines)
	return &View{
		Items: viewLines,
		Totals: Totals{
			Subtotal:     pricing.Round(quote.Subtotal),
			DiscountRate: quote.DiscountRate,
			Discount:     pricing.Round(quote.Discount),
			VAT:          pricing.Round(quote.VAT),
			Total:        pricing.Round(quote.Total),
		},
	}
}
