package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

var _ ports.SequenceStore = (*SequenceStore)(nil)

// SequenceStore keeps per-month order counters in the order_sequences table.
type SequenceStore struct {
	db *gorm.DB
}

func NewSequenceStore(db *gorm.DB) *SequenceStore {
	return &SequenceStore{db: db}
}

const nextSequenceSQL = `INSERT INTO order_sequences (period, last_value, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (period) DO UPDATE
SET last_value = order_sequences.last_value + 1, updated_at = NOW()
RETURNING last_value`

// Next increments the counter for period in a single statement so concurrent
// callers never observe the same value.
func (s *SequenceStore) Next(ctx context.Context, period domain.Period) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("postgres sequence store not configured")
	}
	var value int64
	if err := s.db.WithContext(ctx).Raw(nextSequenceSQL, period.Key()).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}
