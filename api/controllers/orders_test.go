package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ivdgroup/medlab-backend/api/middleware"
	ordersvc "github.com/ivdgroup/medlab-backend/internal/orders"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

type stubOrderService struct {
	checkoutUser  *uuid.UUID
	checkoutInput *ordersvc.CheckoutInput
	checkoutErr   error
	listedUser    uuid.UUID
	detailNumber  string
	detailErr     error
	transitionID  uuid.UUID
	transitionTo  string
	transitionErr error
}

func (s *stubOrderService) Checkout(ctx context.Context, userID *uuid.UUID, input ordersvc.CheckoutInput) (*ordersvc.View, error) {
	s.checkoutUser = userID
	s.checkoutInput = &input
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return &ordersvc.View{OrderNumber: "ORD-1-AAAAA", Status: "pending"}, nil
}

func (s *stubOrderService) GetByNumber(ctx context.Context, orderNumber string) (*ordersvc.View, error) {
	s.detailNumber = orderNumber
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return &ordersvc.View{OrderNumber: orderNumber}, nil
}

func (s *stubOrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]ordersvc.View, error) {
	s.listedUser = userID
	return []ordersvc.View{}, nil
}

func (s *stubOrderService) Transition(ctx context.Context, orderID uuid.UUID, target string) (*ordersvc.View, error) {
	s.transitionID = orderID
	s.transitionTo = target
	if s.transitionErr != nil {
		return nil, s.transitionErr
	}
	return &ordersvc.View{Status: target}, nil
}

const checkoutBody = `{
	"customerName": "Dr. Kowalska",
	"email": "lab@clinic.example",
	"company": "City Clinic",
	"address": "Main 1",
	"city": "Warsaw",
	"postalCode": "00-001",
	"country": "PL",
	"items": [{"productId": "%s", "quantity": 2}]
}`

func TestCheckout(t *testing.T) {
	productID := uuid.New()
	body := strings.Replace(checkoutBody, "%s", productID.String(), 1)

	t.Run("guest order", func(t *testing.T) {
		stub := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Checkout(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.checkoutUser != nil {
			t.Fatalf("guest checkout must not carry a user id")
		}
		if stub.checkoutInput == nil || len(stub.checkoutInput.Items) != 1 {
			t.Fatalf("payload not passed through: %+v", stub.checkoutInput)
		}
	})

	t.Run("signed-in buyer attaches user id", func(t *testing.T) {
		userID := uuid.New()
		stub := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
		rec := httptest.NewRecorder()
		Checkout(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if stub.checkoutUser == nil || *stub.checkoutUser != userID {
			t.Fatalf("user id not attached: %v", stub.checkoutUser)
		}
	})

	t.Run("missing billing fields", func(t *testing.T) {
		stub := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"email":"lab@clinic.example"}`))
		rec := httptest.NewRecorder()
		Checkout(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.checkoutInput != nil {
			t.Fatalf("service must not run on invalid payload")
		}
	})

	t.Run("unknown product maps to 400", func(t *testing.T) {
		stub := &stubOrderService{checkoutErr: pkgerrors.New(pkgerrors.CodeValidation, "unknown product")}
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Checkout(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOrderHistory(t *testing.T) {
	t.Run("requires user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		rec := httptest.NewRecorder()
		OrderHistory(&stubOrderService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("lists caller's orders", func(t *testing.T) {
		userID := uuid.New()
		stub := &stubOrderService{}
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
		rec := httptest.NewRecorder()
		OrderHistory(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.listedUser != userID {
			t.Fatalf("wrong user listed: %v", stub.listedUser)
		}

		var payload struct {
			Data struct {
				Orders []ordersvc.View `json:"orders"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if payload.Data.Orders == nil {
			t.Fatalf("orders must serialize as an array, not null")
		}
	})
}

func TestOrderDetail(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		stub := &stubOrderService{detailErr: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("orderNumber", "ORD-0-ZZZZZ")
		req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-0-ZZZZZ", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		OrderDetail(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubOrderService{}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("orderNumber", "ORD-1-AAAAA")
		req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1-AAAAA", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		OrderDetail(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.detailNumber != "ORD-1-AAAAA" {
			t.Fatalf("order number not passed through: %q", stub.detailNumber)
		}
	})
}
