package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[domain.OrderNumber]string
}

func NewRepository() *Repository {
	return &Repository{
		orders:   map[string]*domain.Order{},
		byNumber: map[domain.OrderNumber]string{},
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[order.Number]; ok {
		return nil, ports.ErrDuplicateOrderNumber
	}
	if _, ok := r.orders[order.ID]; ok {
		return nil, errors.New("order id already exists")
	}
	clone := order.Clone()
	if clone.Version == 0 {
		clone.Version = 1
	}
	r.orders[clone.ID] = clone
	r.byNumber[clone.Number] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.Version != order.Version {
		return nil, ports.ErrConcurrentUpdate
	}
	clone := order.Clone()
	clone.Number = stored.Number
	clone.CreatedAt = stored.CreatedAt
	clone.Version = stored.Version + 1
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) (pagination.Page[*domain.Order], error) {
	req := filter.Request.Normalize()
	r.mu.RLock()
	matched := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if matches(order, filter) {
			matched = append(matched, order.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Number > matched[j].Number
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := min(req.Offset(), len(matched))
	end := min(start+req.PageSize, len(matched))
	return pagination.NewPage(matched[start:end], total, req), nil
}

func matches(order *domain.Order, filter ports.ListFilter) bool {
	if filter.Status != nil && order.Status != *filter.Status {
		return false
	}
	if filter.PaymentStatus != nil && order.PaymentStatus != *filter.PaymentStatus {
		return false
	}
	if filter.CustomerID != "" && order.Customer.ID != filter.CustomerID {
		return false
	}
	return true
}

func (r *Repository) SumRevenue(_ context.Context, window ports.RevenueWindow) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum float64
	for _, order := range r.orders {
		if order.Status == domain.StatusCancelled {
			continue
		}
		if !window.From.IsZero() && order.CreatedAt.Before(window.From) {
			continue
		}
		if !window.To.IsZero() && !order.CreatedAt.Before(window.To) {
			continue
		}
		sum += order.Total
	}
	return sum, nil
}

func (r *Repository) CountByStatus(_ context.Context) (map[domain.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[domain.Status]int64{}
	for _, order := range r.orders {
		counts[order.Status]++
	}
	return counts, nil
}

func (r *Repository) ActivePetIDs(_ context.Context, petIDs []string) (map[string]bool, error) {
	wanted := make(map[string]struct{}, len(petIDs))
	for _, id := range petIDs {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := map[string]bool{}
	for _, order := range r.orders {
		if !order.IsActive() {
			continue
		}
		for _, id := range order.PetIDs() {
			if _, ok := wanted[id]; ok {
				active[id] = true
			}
		}
	}
	return active, nil
}
