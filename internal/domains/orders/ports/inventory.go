package ports

import "context"

// Inventory reserves and releases the pets referenced by orders.
// Reserve either holds every pet or none of them.
type Inventory interface {
	Reserve(ctx context.Context, petIDs []string) error
	Release(ctx context.Context, petIDs []string) error
}
