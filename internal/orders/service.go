package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
	"github.com/ivdgroup/medlab-backend/pkg/pricing"
)

// createAttempts bounds retries when a generated order number collides.
const createAttempts = 3

// ProductLoader is the slice of the catalog checkout needs.
type ProductLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// InvoiceRenderer turns a persisted order into PDF bytes.
type InvoiceRenderer interface {
	Render(order *models.Order) ([]byte, error)
}

// ConfirmationMailer sends the checkout confirmation.
type ConfirmationMailer interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, pdf []byte) error
}

// Service implements checkout, order history, and the admin status machine.
type Service interface {
	Checkout(ctx context.Context, userID *uuid.UUID, input CheckoutInput) (*View, error)
	GetByNumber(ctx context.Context, orderNumber string) (*View, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]View, error)
	Transition(ctx context.Context, orderID uuid.UUID, target string) (*View, error)
}

type service struct {
	repo     *Repository
	client   *db.Client
	products ProductLoader
	invoices InvoiceRenderer
	mailer   ConfirmationMailer
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the order flows.
func NewService(
	repo *Repository,
	client *db.Client,
	products ProductLoader,
	invoices InvoiceRenderer,
	mailer ConfirmationMailer,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product loader required")
	}
	if invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice renderer required")
	}
	if mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}
	return &service{
		repo:     repo,
		client:   client,
		products: products,
		invoices: invoices,
		mailer:   mailer,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Checkout persists the order, then runs the PDF and email side effects
// best-effort. Persistence failure fails the whole submission; a broken PDF
// never blocks the confirmation email, and email failures are only logged.
func (s *service) Checkout(ctx context.Context, userID *uuid.UUID, input CheckoutInput) (*View, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	items, lines, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	quote := pricing.Calculate(lines)
	order := &models.Order{
		UserID:                userID,
		CustomerName:          strings.TrimSpace(input.CustomerName),
		Email:                 strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:                 strings.TrimSpace(input.Phone),
		Company:               strings.TrimSpace(input.Company),
		VATID:                 strings.TrimSpace(input.VATID),
		Address:               strings.TrimSpace(input.Address),
		City:                  strings.TrimSpace(input.City),
		PostalCode:            strings.TrimSpace(input.PostalCode),
		Country:               strings.TrimSpace(input.Country),
		Department:            strings.TrimSpace(input.Department),
		PONumber:              strings.TrimSpace(input.PONumber),
		PreferredDeliveryDate: input.PreferredDeliveryDate,
		Notes:                 strings.TrimSpace(input.Notes),
		PaymentMethod:         enums.PaymentMethodBankTransfer,
		Subtotal:              pricing.Round(quote.Subtotal),
		Discount:              pricing.Round(quote.Discount),
		DiscountRate:          quote.DiscountRate,
		VAT:                   pricing.Round(quote.VAT),
		Total:                 pricing.Round(quote.Total),
		Status:                enums.OrderStatusPending,
		Items:                 items,
	}

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	ctx = s.withOrderLog(ctx, order.OrderNumber)
	s.sendConfirmation(ctx, order)

	return toView(order), nil
}

func (s *service) resolveItems(ctx context.Context, input []CheckoutItem) ([]models.OrderItem, []pricing.Line, error) {
	items := make([]models.OrderItem, 0, len(input))
	lines := make([]pricing.Line, 0, len(input))
	for _, entry := range input {
		if entry.Quantity < 1 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		product, err := s.products.FindByID(ctx, entry.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product in order").
				WithDetails(map[string]string{"productId": entry.ProductID.String()})
		}
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  entry.Quantity,
			UnitPrice: product.Price,
		})
		lines = append(lines, pricing.Line{UnitPrice: product.Price, Quantity: entry.Quantity})
	}
	return items, lines, nil
}

func (s *service) persist(ctx context.Context, order *models.Order) error {
	for attempt := 0; attempt < createAttempts; attempt++ {
		order.OrderNumber = NewOrderNumber(s.now())
		err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, order)
		})
		if err == nil {
			return nil
		}
		if db.IsUniqueViolation(err, "") {
			order.ID = uuid.Nil
			for i := range order.Items {
				order.Items[i].ID = uuid.Nil
				order.Items[i].OrderID = uuid.Nil
			}
			continue
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return pkgerrors.New(pkgerrors.CodeDependency, "could not allocate order number")
}

func (s *service) sendConfirmation(ctx context.Context, order *models.Order) {
	pdf, err := s.invoices.Render(order)
	if err != nil {
		pdf = nil
		if s.logg != nil {
			s.logg.Error(ctx, "failed to render order pdf", err)
		}
	}
	if err := s.mailer.SendOrderConfirmation(ctx, order, pdf); err != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to send order confirmation", err)
	}
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*View, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toView(order), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]View, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, *toView(&rows[i]))
	}
	return views, nil
}

// Transition applies the admin status machine. Invalid targets are a
// validation error; disallowed steps are a state conflict.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, target string) (*View, error) {
	status, err := enums.ParseOrderStatus(target)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]string{
				"from": order.Status.String(),
				"to":   status.String(),
			})
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	return toView(order), nil
}

func (s *service) withOrderLog(ctx context.Context, orderNumber string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderNumber(ctx, orderNumber)
}
