//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/petshop-orders-api/test/pact"

	petshopserver "github.com/Apurer/petshop-orders-api/go"
	ordersmemory "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/observability"
	orderworkflows "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/workflows"
	orderapp "github.com/Apurer/petshop-orders-api/internal/domains/orders/application"
	petsmemory "github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/observability"
	petsapp "github.com/Apurer/petshop-orders-api/internal/domains/pets/application"
	petdomain "github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
	petports "github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/observability"
	usertoken "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/token"
	userapp "github.com/Apurer/petshop-orders-api/internal/domains/users/application"
	userdomain "github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestOrdersProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StatePetsAvailable: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPets(t, pacttest.AvailablePetID, pacttest.SecondAvailablePetID)
			}
			return nil, nil
		},
		pacttest.StatePetReserved: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPets(t, pacttest.AvailablePetID, pacttest.SecondAvailablePetID)
				require.NoError(t, app.current().coordinator.Reserve(context.Background(), []string{pacttest.AvailablePetID}))
			}
			return nil, nil
		},
		pacttest.StateAdminExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedAdmin(t)
			}
			return nil, nil
		},
		pacttest.StateOrdersBase: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// providerState is one isolated set of in-memory adapters behind the router.
type providerState struct {
	pets        *petsmemory.Repository
	coordinator petports.Coordinator
	users       userports.Service
	router      *gin.Engine
}

type contractProviderApp struct {
	mu     sync.RWMutex
	state  *providerState
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.current().router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) current() *providerState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	pets := petsmemory.NewRepository()
	coordinator := petsobs.New(petsapp.NewCoordinator(pets))
	orders := ordersobs.New(orderapp.NewService(
		ordersmemory.NewRepository(),
		coordinator,
		ordersmemory.NewSequenceStore(),
		orderapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()),
	))
	tokens, err := usertoken.NewJWT("pact-secret", time.Hour)
	require.NoError(t, err)
	users := userobs.New(userapp.NewService(usermemory.NewRepository(), tokens))

	handlers := petshopserver.ApiHandleFunctions{
		OrderAPI:      petshopserver.NewOrderAPI(orders, orderworkflows.NewInlinePlacement(orders)),
		AuthAPI:       petshopserver.NewAuthAPI(users),
		Authenticator: users,
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = petshopserver.NewRouterWithGinEngine(router, handlers)

	a.mu.Lock()
	a.state = &providerState{pets: pets, coordinator: coordinator, users: users, router: router}
	a.mu.Unlock()
}

func (a *contractProviderApp) seedPets(t testing.TB, ids ...string) {
	t.Helper()
	state := a.current()
	for _, id := range ids {
		pet, err := petdomain.NewPet(id, "PACT-"+id, "Pact "+id, "dog", 1000)
		require.NoError(t, err)
		_, err = state.pets.Save(context.Background(), pet)
		require.NoError(t, err)
	}
}

func (a *contractProviderApp) seedAdmin(t testing.TB) {
	t.Helper()
	_, err := a.current().users.Register(context.Background(), userports.RegisterInput{
		Name:     "Pact Admin",
		Email:    pacttest.AdminEmail,
		Password: pacttest.AdminPassword,
		Role:     userdomain.RoleAdmin,
	})
	require.NoError(t, err)
}
