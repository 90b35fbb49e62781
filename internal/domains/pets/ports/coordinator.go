package ports

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrPetUnavailable marks a reservation that lost to an existing hold.
var ErrPetUnavailable = errors.New("pet is not available")

// ConflictError names the pets that blocked a reservation. Held pets are
// already reserved by another order; Missing pets do not exist.
type ConflictError struct {
	PetIDs  []string
	Missing []string
}

func (e *ConflictError) Error() string {
	var parts []string
	if len(e.PetIDs) > 0 {
		parts = append(parts, fmt.Sprintf("pets not available: %s", strings.Join(e.PetIDs, ", ")))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("pets not found: %s", strings.Join(e.Missing, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Unwrap reports ErrPetUnavailable when any pet is held, otherwise ErrNotFound.
func (e *ConflictError) Unwrap() error {
	if len(e.PetIDs) > 0 {
		return ErrPetUnavailable
	}
	return ErrNotFound
}

// Coordinator keeps pet availability consistent with active orders.
type Coordinator interface {
	// Reserve flips every pet from available to unavailable, or none of them.
	Reserve(ctx context.Context, petIDs []string) error
	// Release marks pets available again; releasing an available pet is a no-op.
	Release(ctx context.Context, petIDs []string) error
}
