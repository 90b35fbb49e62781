package ports

import (
	"context"
	"time"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

// CreateOrderInput is the customer-facing order submission.
type CreateOrderInput struct {
	Customer       domain.Customer
	Items          []domain.Item
	Total          float64
	PaymentMethod  domain.PaymentMethod
	PaymentStatus  domain.PaymentStatus
	IdempotencyKey string
}

// UpdatePaymentInput carries optional payment field changes.
type UpdatePaymentInput struct {
	PaymentStatus *domain.PaymentStatus
	PaymentMethod *domain.PaymentMethod
}

// Service exposes the order lifecycle and revenue use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	UpdatePayment(ctx context.Context, id string, input UpdatePaymentInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (pagination.Page[*domain.Order], error)

	TotalRevenue(ctx context.Context) (float64, error)
	MonthlyRevenue(ctx context.Context, year int) ([]domain.MonthlyRevenue, error)
	MonthOverMonth(ctx context.Context, now time.Time) (domain.RevenueChange, error)
	Stats(ctx context.Context, now time.Time) (domain.OrderStats, error)
}
