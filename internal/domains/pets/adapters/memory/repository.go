package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory pet inventory adapter.
type Repository struct {
	mu   sync.RWMutex
	pets map[string]*domain.Pet
	now  func() time.Time
}

func NewRepository() *Repository {
	return &Repository{pets: map[string]*domain.Pet{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if pet == nil {
		return nil, errors.New("pet is nil")
	}
	clone := *pet
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if existing, ok := r.pets[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.pets[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pet, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *pet
	return &clone, nil
}

func (r *Repository) CompareAndSetAvailable(_ context.Context, id string, expected, next bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pet, ok := r.pets[id]
	if !ok {
		return false, ports.ErrNotFound
	}
	if pet.Available != expected {
		return false, nil
	}
	pet.Available = next
	pet.UpdatedAt = r.now()
	return true, nil
}

func (r *Repository) ListUnavailable(_ context.Context, cutoff time.Time) ([]*domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Pet, 0)
	for _, pet := range r.pets {
		if pet.Available || !pet.UpdatedAt.Before(cutoff) {
			continue
		}
		clone := *pet
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) ReleaseIfStale(_ context.Context, id string, cutoff time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pet, ok := r.pets[id]
	if !ok {
		return false, ports.ErrNotFound
	}
	if pet.Available || !pet.UpdatedAt.Before(cutoff) {
		return false, nil
	}
	pet.Available = true
	pet.UpdatedAt = r.now()
	return true, nil
}
