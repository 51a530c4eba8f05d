package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

type stubProducts struct {
	count int64
	err   error
}

func (s *stubProducts) CountProducts(context.Context) (int64, error) {
	return s.count, s.err
}

type stubOrders struct {
	total   int64
	pending int64
	recent  []models.Order
	err     error
}

func (s *stubOrders) CountAll(context.Context) (int64, error) {
	return s.total, s.err
}

func (s *stubOrders) CountByStatus(_ context.Context, status enums.OrderStatus) (int64, error) {
	if status != enums.OrderStatusPending {
		return 0, errors.New("unexpected status")
	}
	return s.pending, s.err
}

func (s *stubOrders) Recent(_ context.Context, limit int) ([]models.Order, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], s.err
	}
	return s.recent, s.err
}

func TestStats(t *testing.T) {
	svc, err := NewService(
		&stubProducts{count: 412},
		&stubOrders{
			total:   57,
			pending: 9,
			recent: []models.Order{{
				OrderNumber:  "ORD-1700000000000-AB12C",
				CustomerName: "Lab Manager",
				Company:      "Example Diagnostics",
				Status:       enums.OrderStatusPending,
				Total:        decimal.NewFromFloat(58425),
				CreatedAt:    time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC),
			}},
		},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ProductCount != 412 || stats.OrderCount != 57 || stats.PendingOrders != 9 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if len(stats.RecentOrders) != 1 {
		t.Fatalf("expected 1 recent order, got %d", len(stats.RecentOrders))
	}
	row := stats.RecentOrders[0]
	if row.Total != "58425.00" || row.Status != "pending" {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.CreatedAt != "2026-03-05T10:00:00Z" {
		t.Fatalf("unexpected timestamp %q", row.CreatedAt)
	}
}

func TestStatsPropagatesErrors(t *testing.T) {
	svc, err := NewService(&stubProducts{err: errors.New("db down")}, &stubOrders{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Stats(context.Background())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
