package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/petshop-orders-api/internal/app/api"
	"github.com/Apurer/petshop-orders-api/internal/app/reconciler"
	platformobservability "github.com/Apurer/petshop-orders-api/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; nothing to reconcile in memory")
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "petshop-reservation-reconciler")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := api.BuildStack(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build dependencies", slog.String("error", err.Error()))
		return
	}
	defer stack.Close()

	r := reconciler.New(stack.PetRepo, stack.OrderRepo, cfg.ReconcileGrace, reconciler.WithLogger(logger))
	released, err := r.Run(ctx)
	if err != nil {
		logger.Error("reservation reconcile failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("reservation reconcile completed", slog.Int("released", len(released)), slog.Duration("grace", cfg.ReconcileGrace))
}
