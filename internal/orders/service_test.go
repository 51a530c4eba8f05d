package orders

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/internal/catalog"
	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d+-[A-Z0-9]{5}$`)

type stubInvoices struct {
	pdf []byte
	err error
}

func (s *stubInvoices) Render(_ *models.Order) ([]byte, error) {
	return s.pdf, s.err
}

type captureMailer struct {
	orders []*models.Order
	pdfs   [][]byte
	err    error
}

func (c *captureMailer) SendOrderConfirmation(_ context.Context, order *models.Order, pdf []byte) error {
	c.orders = append(c.orders, order)
	c.pdfs = append(c.pdfs, pdf)
	return c.err
}

type testEnv struct {
	conn     *gorm.DB
	svc      Service
	repo     *Repository
	invoices *stubInvoices
	mailer   *captureMailer
	products []*models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Manufacturer{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	products := []*models.Product{
		{SKU: "HEM-100", Slug: "hematology-analyzer", Name: "Hematology Analyzer", Price: decimal.NewFromInt(45_000), StockStatus: enums.StockStatusInStock},
		{SKU: "TUBE-5", Slug: "edta-tubes", Name: "EDTA Tubes", Price: decimal.NewFromFloat(12.50), StockStatus: enums.StockStatusInStock},
	}
	for _, product := range products {
		if err := conn.Create(product).Error; err != nil {
			t.Fatalf("seed product %s: %v", product.SKU, err)
		}
	}

	repo := NewRepository(conn)
	invoices := &stubInvoices{pdf: []byte("%PDF-1.4 stub")}
	mailer := &captureMailer{}

	svc, err := NewService(repo, db.NewFromGorm(conn), catalog.NewRepository(conn), invoices, mailer, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testEnv{conn: conn, svc: svc, repo: repo, invoices: invoices, mailer: mailer, products: products}
}

func validCheckout(env *testEnv) CheckoutInput {
	return CheckoutInput{
		CustomerName: "Lab Manager",
		Email:        "Lab@Example.com",
		Company:      "Example Diagnostics",
		Address:      "Science Park 1",
		City:         "Warsaw",
		PostalCode:   "00-001",
		Country:      "Poland",
		Items: []CheckoutItem{
			{ProductID: env.products[0].ID, Quantity: 1},
			{ProductID: env.products[1].ID, Quantity: 400},
		},
	}
}

func TestCheckoutPersistsAndDerivesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.svc.Checkout(ctx, nil, validCheckout(env))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if !orderNumberPattern.MatchString(view.OrderNumber) {
		t.Fatalf("unexpected order number %q", view.OrderNumber)
	}
	if view.Status != "pending" {
		t.Fatalf("expected pending status, got %q", view.Status)
	}

	// 45000 + 400*12.50 = 50000 exactly, which earns the 5% tier.
	if !view.Subtotal.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("unexpected subtotal %s", view.Subtotal)
	}
	if !view.DiscountRate.Equal(decimal.NewFromFloat(0.05)) {
		t.Fatalf("expected 5%% rate, got %s", view.DiscountRate)
	}
	if !view.Discount.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("unexpected discount %s", view.Discount)
	}
	if !view.VAT.Equal(decimal.NewFromFloat(10925)) {
		t.Fatalf("unexpected vat %s", view.VAT)
	}
	if !view.Total.Equal(decimal.NewFromFloat(58425)) {
		t.Fatalf("unexpected total %s", view.Total)
	}

	stored, err := env.repo.FindByNumber(ctx, view.OrderNumber)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Email != "lab@example.com" {
		t.Fatalf("expected email lowercased, got %q", stored.Email)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}
	for _, item := range stored.Items {
		if item.SKU == "" || item.Name == "" || item.UnitPrice.IsZero() {
			t.Fatalf("expected product snapshot on item, got %+v", item)
		}
	}

	if len(env.mailer.orders) != 1 {
		t.Fatalf("expected 1 confirmation, got %d", len(env.mailer.orders))
	}
	if string(env.mailer.pdfs[0]) != "%PDF-1.4 stub" {
		t.Fatal("expected rendered pdf passed to mailer")
	}
}

func TestCheckoutPDFFailureStillSendsEmail(t *testing.T) {
	env := newTestEnv(t)
	env.invoices.err = errors.New("font table corrupt")
	env.invoices.pdf = nil

	view, err := env.svc.Checkout(context.Background(), nil, validCheckout(env))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(env.mailer.orders) != 1 {
		t.Fatal("expected confirmation despite pdf failure")
	}
	if env.mailer.pdfs[0] != nil {
		t.Fatal("expected nil pdf attachment")
	}
	if _, err := env.repo.FindByNumber(context.Background(), view.OrderNumber); err != nil {
		t.Fatalf("order should be persisted: %v", err)
	}
}

func TestCheckoutEmailFailureDoesNotFailOrder(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("relay refused")

	view, err := env.svc.Checkout(context.Background(), nil, validCheckout(env))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := env.repo.FindByNumber(context.Background(), view.OrderNumber); err != nil {
		t.Fatalf("order should be persisted: %v", err)
	}
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := validCheckout(env)
	input.Items = nil
	_, err := env.svc.Checkout(ctx, nil, input)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}

	input = validCheckout(env)
	input.Items[0].ProductID = uuid.New()
	_, err = env.svc.Checkout(ctx, nil, input)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown product, got %v", err)
	}
	if len(env.mailer.orders) != 0 {
		t.Fatal("expected no emails for failed checkout")
	}
}

func TestCheckoutAttachesUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &models.User{Email: "buyer@example.com", Name: "Buyer", Role: enums.UserRoleUser}
	if err := env.conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	view, err := env.svc.Checkout(ctx, &user.ID, validCheckout(env))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	history, err := env.svc.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(history) != 1 || history[0].OrderNumber != view.OrderNumber {
		t.Fatalf("unexpected history %+v", history)
	}

	loaded, err := env.repo.FindForUserByNumber(ctx, view.OrderNumber, user.ID)
	if err != nil {
		t.Fatalf("find for user: %v", err)
	}
	if loaded.OrderNumber != view.OrderNumber {
		t.Fatalf("unexpected order %+v", loaded)
	}

	if _, err := env.repo.FindForUserByNumber(ctx, view.OrderNumber, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected other users locked out, got %v", err)
	}
}

func TestGetByNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.svc.Checkout(ctx, nil, validCheckout(env))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	got, err := env.svc.GetByNumber(ctx, view.OrderNumber)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if got.OrderNumber != view.OrderNumber || len(got.Items) != 2 {
		t.Fatalf("unexpected view %+v", got)
	}

	_, err = env.svc.GetByNumber(ctx, "ORD-0-XXXXX")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.svc.Checkout(ctx, nil, validCheckout(env))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	moved, err := env.svc.Transition(ctx, view.ID, "processing")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if moved.Status != "processing" {
		t.Fatalf("unexpected status %q", moved.Status)
	}

	_, err = env.svc.Transition(ctx, view.ID, "delivered")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state_conflict for processing->delivered, got %v", err)
	}

	_, err = env.svc.Transition(ctx, view.ID, "archived")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	if _, err := env.svc.Transition(ctx, view.ID, "cancelled"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = env.svc.Transition(ctx, view.ID, "processing")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected cancelled terminal, got %v", err)
	}

	_, err = env.svc.Transition(ctx, uuid.New(), "processing")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
