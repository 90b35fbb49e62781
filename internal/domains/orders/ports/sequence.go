package ports

import (
	"context"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
)

// SequenceStore hands out atomically incremented per-month counters.
type SequenceStore interface {
	// Next returns the next value for period, starting at 1.
	Next(ctx context.Context, period domain.Period) (int64, error)
}
