package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
)

// Coordinator reserves and releases pets using only per-pet conditional writes.
// Batches are processed in sorted id order; a failed batch is compensated by
// releasing whatever this call already flipped.
type Coordinator struct {
	repo ports.Repository
}

func NewCoordinator(repo ports.Repository) *Coordinator {
	return &Coordinator{repo: repo}
}

// Reserve marks every pet unavailable or returns *ports.ConflictError naming all
// pets that are held or missing. On conflict no pet is left changed by this call.
func (c *Coordinator) Reserve(ctx context.Context, petIDs []string) error {
	ids := normalizeIDs(petIDs)
	if len(ids) == 0 {
		return nil
	}
	reserved := make([]string, 0, len(ids))
	conflict := &ports.ConflictError{}
	for _, id := range ids {
		if len(conflict.PetIDs)+len(conflict.Missing) > 0 {
			// Already failing: inspect the rest without writing so the error is complete.
			if err := c.classify(ctx, id, conflict); err != nil {
				return c.abort(ctx, reserved, err)
			}
			continue
		}
		swapped, err := c.repo.CompareAndSetAvailable(ctx, id, true, false)
		switch {
		case errors.Is(err, ports.ErrNotFound):
			conflict.Missing = append(conflict.Missing, id)
		case err != nil:
			return c.abort(ctx, reserved, fmt.Errorf("reserve pet %s: %w", id, err))
		case !swapped:
			conflict.PetIDs = append(conflict.PetIDs, id)
		default:
			reserved = append(reserved, id)
		}
	}
	if len(conflict.PetIDs)+len(conflict.Missing) == 0 {
		return nil
	}
	return c.abort(ctx, reserved, conflict)
}

// Release marks pets available again. Unknown or already available pets are skipped.
// Every id is attempted; failures are joined.
func (c *Coordinator) Release(ctx context.Context, petIDs []string) error {
	var errs []error
	for _, id := range normalizeIDs(petIDs) {
		if _, err := c.repo.CompareAndSetAvailable(ctx, id, false, true); err != nil && !errors.Is(err, ports.ErrNotFound) {
			errs = append(errs, fmt.Errorf("release pet %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) classify(ctx context.Context, id string, conflict *ports.ConflictError) error {
	pet, err := c.repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		conflict.Missing = append(conflict.Missing, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect pet %s: %w", id, err)
	}
	if !pet.Available {
		conflict.PetIDs = append(conflict.PetIDs, id)
	}
	return nil
}

// abort releases the pets reserved so far, newest first, and returns cause
// joined with any compensation failure.
func (c *Coordinator) abort(ctx context.Context, reserved []string, cause error) error {
	var errs []error
	for i := len(reserved) - 1; i >= 0; i-- {
		if _, err := c.repo.CompareAndSetAvailable(ctx, reserved[i], false, true); err != nil {
			errs = append(errs, fmt.Errorf("compensate pet %s: %w", reserved[i], err))
		}
	}
	if len(errs) == 0 {
		return cause
	}
	return errors.Join(append([]error{cause}, errs...)...)
}

func normalizeIDs(petIDs []string) []string {
	seen := make(map[string]struct{}, len(petIDs))
	ids := make([]string, 0, len(petIDs))
	for _, id := range petIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var _ ports.Coordinator = (*Coordinator)(nil)
