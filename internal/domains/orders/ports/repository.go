package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

var (
	ErrNotFound             = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrConcurrentUpdate     = errors.New("order was modified concurrently")
)

// ListFilter enumerates the recognised order list filters.
type ListFilter struct {
	Status        *domain.Status
	PaymentStatus *domain.PaymentStatus
	CustomerID    string
	pagination.Request
}

// RevenueWindow bounds a revenue sum to [From, To). Zero values leave a side open.
type RevenueWindow struct {
	From time.Time
	To   time.Time
}

// Repository is the order store. Orders are never deleted.
type Repository interface {
	// Create inserts a new order and returns ErrDuplicateOrderNumber on a number clash.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Update writes the order if its stored version still equals order.Version,
	// bumping the version; otherwise it returns ErrConcurrentUpdate.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) (pagination.Page[*domain.Order], error)
	// SumRevenue totals non-cancelled orders created inside the window.
	SumRevenue(ctx context.Context, window RevenueWindow) (float64, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
	// ActivePetIDs returns the subset of petIDs held by a non-cancelled order.
	ActivePetIDs(ctx context.Context, petIDs []string) (map[string]bool, error)
}
