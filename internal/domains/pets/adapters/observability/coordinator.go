package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/observability/coordinator"

// Coordinator decorates the inventory coordinator with tracing, logging, and metrics.
type Coordinator struct {
	inner   ports.Coordinator
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics coordinatorMetrics
}

type Option func(*Coordinator)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = tr
	}
}

// WithMeter injects the meter used to create coordinator instruments.
func WithMeter(m metric.Meter) Option {
	return func(c *Coordinator) {
		c.metrics = newCoordinatorMetrics(m)
	}
}

// New wires a decorator around the core coordinator.
func New(inner ports.Coordinator, opts ...Option) ports.Coordinator {
	c := &Coordinator{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newCoordinatorMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.tracer == nil {
		c.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	return c
}

func (c *Coordinator) Reserve(ctx context.Context, petIDs []string) error {
	ctx, span := c.tracer.Start(ctx, "InventoryCoordinator.Reserve",
		trace.WithAttributes(attribute.StringSlice("pet.ids", petIDs)))
	defer span.End()

	err := c.inner.Reserve(ctx, petIDs)
	if err != nil {
		var conflict *ports.ConflictError
		if errors.As(err, &conflict) {
			c.metrics.recordConflict(ctx, len(conflict.PetIDs), len(conflict.Missing))
			span.SetAttributes(
				attribute.StringSlice("pet.held", conflict.PetIDs),
				attribute.StringSlice("pet.missing", conflict.Missing),
			)
			c.logger.LogAttrs(ctx, slog.LevelWarn, "pet reservation rejected",
				slog.String("pet.ids", strings.Join(petIDs, ",")),
				slog.String("pet.held", strings.Join(conflict.PetIDs, ",")),
				slog.String("pet.missing", strings.Join(conflict.Missing, ",")))
			return err
		}
		return c.handleError(ctx, span, err, "pet reservation failed", slog.String("pet.ids", strings.Join(petIDs, ",")))
	}
	c.metrics.recordReserved(ctx, len(petIDs))
	c.logger.LogAttrs(ctx, slog.LevelInfo, "pets reserved", slog.String("pet.ids", strings.Join(petIDs, ",")))
	return nil
}

func (c *Coordinator) Release(ctx context.Context, petIDs []string) error {
	ctx, span := c.tracer.Start(ctx, "InventoryCoordinator.Release",
		trace.WithAttributes(attribute.StringSlice("pet.ids", petIDs)))
	defer span.End()

	if err := c.inner.Release(ctx, petIDs); err != nil {
		return c.handleError(ctx, span, err, "pet release failed", slog.String("pet.ids", strings.Join(petIDs, ",")))
	}
	c.metrics.recordReleased(ctx, len(petIDs))
	c.logger.LogAttrs(ctx, slog.LevelInfo, "pets released", slog.String("pet.ids", strings.Join(petIDs, ",")))
	return nil
}

func (c *Coordinator) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	c.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type coordinatorMetrics struct {
	petsReserved metric.Int64Counter
	petsReleased metric.Int64Counter
	conflicts    metric.Int64Counter
}

func newCoordinatorMetrics(m metric.Meter) coordinatorMetrics {
	if m == nil {
		return coordinatorMetrics{}
	}
	reserved, _ := m.Int64Counter("pets.inventory.reserved", metric.WithDescription("Number of pets reserved for orders"))
	released, _ := m.Int64Counter("pets.inventory.released", metric.WithDescription("Number of pets released back to the catalog"))
	conflicts, _ := m.Int64Counter("pets.inventory.conflicts", metric.WithDescription("Number of rejected reservations"))
	return coordinatorMetrics{petsReserved: reserved, petsReleased: released, conflicts: conflicts}
}

func (m coordinatorMetrics) recordReserved(ctx context.Context, n int) {
	if m.petsReserved != nil {
		m.petsReserved.Add(ctx, int64(n))
	}
}

func (m coordinatorMetrics) recordReleased(ctx context.Context, n int) {
	if m.petsReleased != nil {
		m.petsReleased.Add(ctx, int64(n))
	}
}

func (m coordinatorMetrics) recordConflict(ctx context.Context, held, missing int) {
	if m.conflicts != nil {
		m.conflicts.Add(ctx, 1, metric.WithAttributes(
			attribute.Int("pets.held", held),
			attribute.Int("pets.missing", missing),
		))
	}
}

var _ ports.Coordinator = (*Coordinator)(nil)
