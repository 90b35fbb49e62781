package ports

import (
	"context"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
)

// PlacementOrchestrator runs order placement, durably when a workflow engine is available.
type PlacementOrchestrator interface {
	PlaceOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
}
