package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

// NumberGenerator issues ORD-YYYYMM-NNN numbers from an atomic per-month sequence.
type NumberGenerator struct {
	sequences ports.SequenceStore
}

func NewNumberGenerator(sequences ports.SequenceStore) *NumberGenerator {
	return &NumberGenerator{sequences: sequences}
}

// Next draws the next number for the local calendar month containing now.
func (g *NumberGenerator) Next(ctx context.Context, now time.Time) (domain.OrderNumber, error) {
	period := domain.PeriodOf(now)
	seq, err := g.sequences.Next(ctx, period)
	if err != nil {
		return "", fmt.Errorf("allocate order number for %s: %w", period.Key(), err)
	}
	return domain.FormatOrderNumber(period, seq), nil
}
