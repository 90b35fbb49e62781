package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/memory"
	petsapp "github.com/Apurer/petshop-orders-api/internal/domains/pets/application"
	"github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
)

type fakeOrders struct {
	active map[string]bool
	err    error
	asked  []string
}

func (f *fakeOrders) ActivePetIDs(_ context.Context, petIDs []string) (map[string]bool, error) {
	f.asked = append(f.asked, petIDs...)
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]bool{}
	for _, id := range petIDs {
		if f.active[id] {
			out[id] = true
		}
	}
	return out, nil
}

// rereservingOrders simulates a cancel followed by a new create that has
// reserved the pet but not yet persisted its order.
type rereservingOrders struct {
	before func()
}

func (f *rereservingOrders) ActivePetIDs(context.Context, []string) (map[string]bool, error) {
	f.before()
	return map[string]bool{}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func seed(t *testing.T, c *clock, ids ...string) *memory.Repository {
	t.Helper()
	repo := memory.NewRepository()
	repo.WithClock(c.now)
	for _, id := range ids {
		pet, err := domain.NewPet(id, "C-"+id, "Pet "+id, "dog", 100)
		require.NoError(t, err)
		_, err = repo.Save(context.Background(), pet)
		require.NoError(t, err)
	}
	return repo
}

func TestRun_ReleasesOnlyOrphanedHolds(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	repo := seed(t, c, "p1", "p2", "p3", "p4")
	coordinator := petsapp.NewCoordinator(repo)
	require.NoError(t, coordinator.Reserve(ctx, []string{"p1", "p2", "p3"}))

	c.t = c.t.Add(50 * time.Minute)
	require.NoError(t, coordinator.Reserve(ctx, []string{"p4"}))

	orders := &fakeOrders{active: map[string]bool{"p1": true}}
	r := New(repo, orders, 15*time.Minute, WithClock(func() time.Time { return c.t.Add(10 * time.Minute) }))

	released, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, released)
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, orders.asked)

	for id, want := range map[string]bool{"p1": false, "p2": true, "p3": true, "p4": false} {
		pet, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, pet.Available, id)
	}
}

func TestRun_NothingHeld(t *testing.T) {
	c := &clock{t: time.Now()}
	repo := seed(t, c, "p1")
	orders := &fakeOrders{}
	r := New(repo, orders, time.Minute)

	released, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Empty(t, orders.asked)
}

func TestRun_OrderLookupFailureReleasesNothing(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	repo := seed(t, c, "p1")
	coordinator := petsapp.NewCoordinator(repo)
	require.NoError(t, coordinator.Reserve(ctx, []string{"p1"}))

	boom := errors.New("db down")
	r := New(repo, &fakeOrders{err: boom}, time.Minute, WithClock(func() time.Time { return c.t.Add(time.Hour) }))

	_, err := r.Run(ctx)
	require.ErrorIs(t, err, boom)
	pet, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, pet.Available)
}

func TestRun_KeepsHoldTakenAfterListing(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := &clock{t: start}
	repo := seed(t, c, "p1", "p2")
	coordinator := petsapp.NewCoordinator(repo)
	require.NoError(t, coordinator.Reserve(ctx, []string{"p1", "p2"}))

	reconcileAt := start.Add(time.Hour)
	orders := &rereservingOrders{before: func() {
		c.t = reconcileAt
		require.NoError(t, coordinator.Release(ctx, []string{"p1"}))
		require.NoError(t, coordinator.Reserve(ctx, []string{"p1"}))
	}}
	r := New(repo, orders, 15*time.Minute, WithClock(func() time.Time { return reconcileAt }))

	released, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, released)

	pet, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.False(t, pet.Available, "the new hold on p1 must survive")

	err = coordinator.Reserve(ctx, []string{"p1"})
	require.Error(t, err)
	var conflict *ports.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"p1"}, conflict.PetIDs)
}
