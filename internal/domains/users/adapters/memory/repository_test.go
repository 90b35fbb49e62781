package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
)

func TestRepository_EmailIsUnique(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	alice, err := domain.NewUser("u1", "Alice", "alice@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = repo.Save(ctx, alice)
	require.NoError(t, err)

	imposter, err := domain.NewUser("u2", "Mallory", "ALICE@example.com", "secret2", "")
	require.NoError(t, err)
	_, err = repo.Save(ctx, imposter)
	assert.ErrorIs(t, err, ports.ErrDuplicateEmail)

	// Re-saving the owner keeps the email.
	alice.Name = "Alice B"
	updated, err := repo.Save(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)

	found, err := repo.GetByEmail(ctx, " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
}

func TestRepository_GetByIDReturnsCopy(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	user, err := domain.NewUser("u1", "Alice", "alice@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	fetched.Name = "changed"

	again, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
