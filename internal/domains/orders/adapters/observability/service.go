package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(
			attribute.Int("order.items", len(input.Items)),
			attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
		))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int("order.items", len(input.Items)), slog.String("customer.email", input.Customer.Email))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, err)
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int("order.items", len(input.Items)))
	}
	span.SetAttributes(attribute.String("order.id", result.ID), attribute.String("order.number", result.Number.String()))
	s.metrics.recordCreated(ctx, result.Total)
	s.logInfo(ctx, "order created",
		slog.String("order.id", result.ID),
		slog.String("order.number", result.Number.String()),
		slog.Float64("order.total", result.Total))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(attribute.String("order.id", id), attribute.String("order.status", string(status))))
	defer span.End()

	result, err := s.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("order.id", id), slog.String("order.status", string(status)))
	}
	s.metrics.recordStatusChange(ctx, result.Status)
	s.logInfo(ctx, "order status updated", slog.String("order.id", id), slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) UpdatePayment(ctx context.Context, id string, input ports.UpdatePaymentInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdatePayment", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	result, err := s.inner.UpdatePayment(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order payment", slog.String("order.id", id))
	}
	s.logInfo(ctx, "order payment updated",
		slog.String("order.id", id),
		slog.String("payment.status", string(result.PaymentStatus)),
		slog.String("payment.method", string(result.PaymentMethod)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()
	result, err := s.inner.GetOrder(ctx, id)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.String("order.id", id))
	}
	return result, err
}

func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) (pagination.Page[*domain.Order], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders",
		trace.WithAttributes(attribute.Int("page", filter.Page), attribute.Int("page.size", filter.PageSize)))
	defer span.End()
	result, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int64("orders.total", result.Total))
	return result, nil
}

func (s *Service) TotalRevenue(ctx context.Context) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.TotalRevenue")
	defer span.End()
	result, err := s.inner.TotalRevenue(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to compute total revenue")
	}
	return result, nil
}

func (s *Service) MonthlyRevenue(ctx context.Context, year int) ([]domain.MonthlyRevenue, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.MonthlyRevenue", trace.WithAttributes(attribute.Int("revenue.year", year)))
	defer span.End()
	start := time.Now()
	result, err := s.inner.MonthlyRevenue(ctx, year)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to compute monthly revenue", slog.Int("revenue.year", year))
	}
	s.metrics.recordRevenueQuery(ctx, time.Since(start))
	return result, nil
}

func (s *Service) MonthOverMonth(ctx context.Context, now time.Time) (domain.RevenueChange, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.MonthOverMonth")
	defer span.End()
	result, err := s.inner.MonthOverMonth(ctx, now)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to compute month over month revenue")
	}
	return result, nil
}

func (s *Service) Stats(ctx context.Context, now time.Time) (domain.OrderStats, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Stats")
	defer span.End()
	result, err := s.inner.Stats(ctx, now)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to compute order stats")
	}
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated  metric.Int64Counter
	ordersRejected metric.Int64Counter
	statusChanges  metric.Int64Counter
	orderValue     metric.Float64Histogram
	revenueLatency metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order submissions rejected"))
	changes, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Number of order status transitions"))
	value, _ := m.Float64Histogram("orders.service.order_value", metric.WithDescription("Order totals at creation"))
	latency, _ := m.Float64Histogram("orders.service.revenue_query_ms",
		metric.WithDescription("Monthly revenue aggregation latency"), metric.WithUnit("ms"))
	return serviceMetrics{
		ordersCreated:  created,
		ordersRejected: rejected,
		statusChanges:  changes,
		orderValue:     value,
		revenueLatency: latency,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, total float64) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1)
	}
	if m.orderValue != nil {
		m.orderValue.Record(ctx, total)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, err error) {
	if m.ordersRejected == nil {
		return
	}
	reason := "error"
	switch {
	case errors.Is(err, ports.ErrIdempotencyConflict):
		reason = "idempotency_conflict"
	case errors.Is(err, ports.ErrDuplicateOrderNumber):
		reason = "number_exhausted"
	}
	m.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status domain.Status) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
}

func (m serviceMetrics) recordRevenueQuery(ctx context.Context, elapsed time.Duration) {
	if m.revenueLatency != nil {
		m.revenueLatency.Record(ctx, float64(elapsed.Microseconds())/1000)
	}
}

var _ ports.Service = (*Service)(nil)
