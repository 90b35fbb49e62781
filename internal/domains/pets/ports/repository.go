package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
)

var ErrNotFound = errors.New("pet not found")

// Repository is the pet inventory store. Availability changes only through
// CompareAndSetAvailable so concurrent reservations cannot both win.
type Repository interface {
	Save(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	GetByID(ctx context.Context, id string) (*domain.Pet, error)
	// CompareAndSetAvailable sets available=next only if it currently equals expected.
	// It reports whether the write happened and returns ErrNotFound for unknown ids.
	CompareAndSetAvailable(ctx context.Context, id string, expected, next bool) (bool, error)
	// ListUnavailable returns pets marked unavailable whose last change is before cutoff.
	ListUnavailable(ctx context.Context, cutoff time.Time) ([]*domain.Pet, error)
	// ReleaseIfStale sets available=true only while the pet is still unavailable
	// and its last change is before cutoff. A pet re-reserved after cutoff keeps
	// its hold and the call reports false.
	ReleaseIfStale(ctx context.Context, id string, cutoff time.Time) (bool, error)
}
