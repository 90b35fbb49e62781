package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"

	petshopserver "github.com/Apurer/petshop-orders-api/go"

	orderworkflows "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	userobs "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/observability"
	"github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/token"
	userapp "github.com/Apurer/petshop-orders-api/internal/domains/users/application"
	platformobservability "github.com/Apurer/petshop-orders-api/internal/platform/observability"
)

const (
	serviceName     = "petshop-orders-api"
	shutdownTimeout = 10 * time.Second
)

// Run boots the orders HTTP API with observability, repositories, and workflows
// wired, and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	if cfg.JWTSecretGenerated {
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	stack, err := BuildStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer stack.Close()

	tokens, err := token.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	users := userobs.New(
		userapp.NewService(stack.UserRepo, tokens),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, users, stack.PetRepo, logger); err != nil {
			return err
		}
	}

	placement, closePlacement := choosePlacement(stack, func() (client.Client, error) {
		return ConnectTemporal(cfg, instruments)
	}, logger)
	defer closePlacement()

	handlers := petshopserver.ApiHandleFunctions{
		OrderAPI:      petshopserver.NewOrderAPI(stack.Orders, placement),
		AuthAPI:       petshopserver.NewAuthAPI(users),
		Authenticator: users,
	}
	router := petshopserver.NewRouter(handlers, petshopserver.RouterOptions{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("orders API listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("orders API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down orders API")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// choosePlacement routes creates through Temporal when a client can be dialed
// and the stack is durable. A memory-backed stack always places inline: the
// worker would run activities against its own private memory.
func choosePlacement(stack *Stack, dial func() (client.Client, error), logger *slog.Logger) (orderports.PlacementOrchestrator, func()) {
	inline := orderworkflows.NewInlinePlacement(stack.Orders)
	if !stack.Durable {
		logger.Warn("repositories are in memory, placing orders inline instead of via Temporal")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return orderworkflows.NewTemporalPlacement(temporalClient), temporalClient.Close
}
