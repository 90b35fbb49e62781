package reconciler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	petsdomain "github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
)

// StalePets lists pets marked unavailable before cutoff and releases them
// only while that is still true.
type StalePets interface {
	ListUnavailable(ctx context.Context, cutoff time.Time) ([]*petsdomain.Pet, error)
	ReleaseIfStale(ctx context.Context, id string, cutoff time.Time) (bool, error)
}

// ActiveOrders reports which pet ids a non-cancelled order still references.
type ActiveOrders interface {
	ActivePetIDs(ctx context.Context, petIDs []string) (map[string]bool, error)
}

// Reconciler releases pets left unavailable by a create that reserved them but
// never persisted its order.
type Reconciler struct {
	pets   StalePets
	orders ActiveOrders
	grace  time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New builds a reconciler that ignores holds younger than grace, so in-flight
// creates are never released from under their order.
func New(pets StalePets, orders ActiveOrders, grace time.Duration, opts ...Option) *Reconciler {
	r := &Reconciler{
		pets:   pets,
		orders: orders,
		grace:  grace,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run performs one pass and returns the ids it released. A pet reserved again
// between the listing and the release is skipped, because its hold is no
// longer older than cutoff.
func (r *Reconciler) Run(ctx context.Context) ([]string, error) {
	cutoff := r.now().Add(-r.grace)
	held, err := r.pets.ListUnavailable(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list unavailable pets: %w", err)
	}
	if len(held) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(held))
	for _, pet := range held {
		ids = append(ids, pet.ID)
	}
	active, err := r.orders.ActivePetIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load active pet ids: %w", err)
	}
	var released, skipped []string
	for _, id := range ids {
		if active[id] {
			continue
		}
		ok, err := r.pets.ReleaseIfStale(ctx, id, cutoff)
		if err != nil {
			return released, fmt.Errorf("release orphaned pet %s: %w", id, err)
		}
		if ok {
			released = append(released, id)
		} else {
			skipped = append(skipped, id)
		}
	}
	if len(skipped) > 0 {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "orphan candidates re-reserved during reconcile",
			slog.Any("pet.ids", skipped),
		)
	}
	if len(released) == 0 {
		return nil, nil
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "released orphaned reservations",
		slog.Int("count", len(released)),
		slog.Any("pet.ids", released),
		slog.Time("cutoff", cutoff),
	)
	return released, nil
}
