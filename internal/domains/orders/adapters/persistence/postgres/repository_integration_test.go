//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	orderspostgres "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/petshop-orders-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/petshop-orders-api/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("petshop_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newOrder(t *testing.T, id string, number domain.OrderNumber, createdAt time.Time, total float64, petIDs ...string) *domain.Order {
	t.Helper()
	items := make([]domain.Item, 0, len(petIDs))
	for _, pet := range petIDs {
		items = append(items, domain.Item{PetID: pet, Name: "Pet " + pet, Price: total / float64(len(petIDs))})
	}
	order, err := domain.NewOrder(id, domain.Customer{ID: "u1", Name: "Ada", Email: "ada@example.com"}, items, total, "", "")
	require.NoError(t, err)
	order.Number = number
	order.CreatedAt = createdAt
	order.UpdatedAt = createdAt
	return order
}

func TestPostgresRepository_CreateGetAndDuplicateNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := orderspostgres.NewRepository(db)
	ctx := context.Background()
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)

	created, err := repo.Create(ctx, newOrder(t, "o1", "ORD-202403-001", now, 150, "p1", "p2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	fetched, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderNumber("ORD-202403-001"), fetched.Number)
	assert.Equal(t, []string{"p1", "p2"}, fetched.PetIDs())
	assert.Equal(t, domain.PaymentCash, fetched.PaymentMethod)

	_, err = repo.Create(ctx, newOrder(t, "o2", "ORD-202403-001", now, 10, "p3"))
	assert.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_UpdateChecksVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := orderspostgres.NewRepository(db)
	ctx := context.Background()
	order, err := repo.Create(ctx, newOrder(t, "o1", "ORD-202403-001", time.Now(), 100, "p1"))
	require.NoError(t, err)

	stale := order.Clone()
	order.Status = domain.StatusProcessing
	updated, err := repo.Update(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	stale.Status = domain.StatusCancelled
	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, ports.ErrConcurrentUpdate)

	stale.ID = "missing"
	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_ListRevenueAndActivePets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := orderspostgres.NewRepository(db)
	ctx := context.Background()
	march := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)

	_, err := repo.Create(ctx, newOrder(t, "o1", "ORD-202403-001", march, 100, "p1"))
	require.NoError(t, err)
	cancelled, err := repo.Create(ctx, newOrder(t, "o2", "ORD-202403-002", march.Add(time.Hour), 50, "p2"))
	require.NoError(t, err)
	cancelled.Status = domain.StatusCancelled
	_, err = repo.Update(ctx, cancelled)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newOrder(t, "o3", "ORD-202404-001", march.AddDate(0, 1, 0), 30, "p3"))
	require.NoError(t, err)

	from, to := domain.MonthBounds(2024, time.March)
	sum, err := repo.SumRevenue(ctx, ports.RevenueWindow{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum)

	all, err := repo.SumRevenue(ctx, ports.RevenueWindow{})
	require.NoError(t, err)
	assert.Equal(t, 130.0, all)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusPending])
	assert.Equal(t, int64(1), counts[domain.StatusCancelled])

	filter := ports.ListFilter{}
	filter.PageSize = 2
	page, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "o3", page.Items[0].ID)

	status := domain.StatusCancelled
	page, err = repo.List(ctx, ports.ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "o2", page.Items[0].ID)

	active, err := repo.ActivePetIDs(ctx, []string{"p1", "p2", "p3", "p4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true, "p3": true}, active)
}

func TestPostgresSequenceStore_ConcurrentNextIsUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := orderspostgres.NewSequenceStore(db)
	period := domain.Period{Year: 2024, Month: time.March}

	const callers = 20
	values := make([]int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := store.Next(context.Background(), period)
			assert.NoError(t, err)
			values[i] = v
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, v := range values {
		assert.False(t, seen[v], "duplicate sequence %d", v)
		seen[v] = true
	}
	for v := int64(1); v <= callers; v++ {
		assert.True(t, seen[v], "missing sequence %d", v)
	}

	next, err := store.Next(context.Background(), domain.Period{Year: 2024, Month: time.April})
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}

func TestPostgresIdempotencyStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := orderspostgres.NewIdempotencyStore(db)
	ctx := context.Background()

	missing, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", OrderID: "o1"})
	require.NoError(t, err)

	same, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, "o1", same.OrderID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", OrderID: "o2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}
