package admin

import (
	"context"
	"time"

	"github.com/ivdgroup/medlab-backend/internal/orders"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

// recentOrderCount is how many orders the dashboard shows.
const recentOrderCount = 10

// ProductCounter is the slice of the catalog the dashboard needs.
type ProductCounter interface {
	CountProducts(ctx context.Context) (int64, error)
}

// OrderStats is the slice of the order store the dashboard needs.
type OrderStats interface {
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status enums.OrderStatus) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

// RecentOrder is the slim order row shown on the dashboard.
type RecentOrder struct {
	OrderNumber  string `json:"orderNumber"`
	CustomerName string `json:"customerName"`
	Company      string `json:"company"`
	Status       string `json:"status"`
	Total        string `json:"total"`
	CreatedAt    string `json:"createdAt"`
}

// Stats is the dashboard payload.
type Stats struct {
	ProductCount  int64         `json:"productCount"`
	OrderCount    int64         `json:"orderCount"`
	PendingOrders int64         `json:"pendingOrders"`
	RecentOrders  []RecentOrder `json:"recentOrders"`
}

// Service aggregates the admin dashboard numbers.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	products ProductCounter
	orders   OrderStats
}

// NewService wires the dashboard sources.
func NewService(products ProductCounter, orderStats OrderStats) (Service, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product counter required")
	}
	if orderStats == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order stats required")
	}
	return &service{products: products, orders: orderStats}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	productCount, err := s.products.CountProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	orderCount, err := s.orders.CountAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	pending, err := s.orders.CountByStatus(ctx, enums.OrderStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending orders")
	}
	recent, err := s.orders.Recent(ctx, recentOrderCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}

	rows := make([]RecentOrder, 0, len(recent))
	for _, order := range recent {
		rows = append(rows, RecentOrder{
			OrderNumber:  order.OrderNumber,
			CustomerName: order.CustomerName,
			Company:      order.Company,
			Status:       order.Status.String(),
			Total:        order.Total.StringFixed(2),
			CreatedAt:    order.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return &Stats{
		ProductCount:  productCount,
		OrderCount:    orderCount,
		PendingOrders: pending,
		RecentOrders:  rows,
	}, nil
}

var _ OrderStats = (*orders.Repository)(nil)
