package memory

import (
	"context"
	"sync"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

var _ ports.SequenceStore = (*SequenceStore)(nil)

// SequenceStore hands out per-month order sequences from process memory.
type SequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequenceStore() *SequenceStore {
	return &SequenceStore{counters: map[string]int64{}}
}

func (s *SequenceStore) Next(_ context.Context, period domain.Period) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[period.Key()]++
	return s.counters[period.Key()], nil
}

// Seed sets the last issued value for a period.
func (s *SequenceStore) Seed(period domain.Period, last int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[period.Key()] = last
}
