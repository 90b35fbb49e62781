package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

const paymentUpdateAttempts = 3

// Service orchestrates the order lifecycle: it reserves pets before an order
// is persisted and releases them when persistence fails or the order is cancelled.
type Service struct {
	repo        ports.Repository
	inventory   ports.Inventory
	numbers     *NumberGenerator
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	policy      Policy
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string

	revenue singleflight.Group
}

// Option customises optional collaborators of the service.
type Option func(*Service)

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithPolicy(policy Policy) Option {
	return func(s *Service) { s.policy = policy }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how order ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(repo ports.Repository, inventory ports.Inventory, sequences ports.SequenceStore, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		inventory: inventory,
		numbers:   NewNumberGenerator(sequences),
		events:    ports.NoopPublisher,
		policy:    DefaultPolicy(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.policy = s.policy.normalized()
	if s.events == nil {
		s.events = ports.NoopPublisher
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// CreateOrder validates the submission, reserves its pets and persists a pending order.
// If persistence fails the reservation is released before the error is returned.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	key, err := s.idempotencyKey(input)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := domain.NewOrder(s.newID(), input.Customer, input.Items, input.Total, input.PaymentMethod, input.PaymentStatus)
	if err != nil {
		return nil, mapError(err)
	}
	if s.policy.Total == TotalMatchItems && !order.TotalMatchesItems() {
		return nil, mapError(fmt.Errorf("%w: total %.2f, items %.2f", domain.ErrTotalMismatch, order.Total, order.ItemsTotal()))
	}

	var fingerprint string
	if key != "" {
		if fingerprint, err = FingerprintCreateOrder(input); err != nil {
			return nil, err
		}
		if replay, err := s.replay(ctx, key, fingerprint); replay != nil || err != nil {
			return replay, err
		}
	}

	petIDs := order.PetIDs()
	if err := s.inventory.Reserve(ctx, petIDs); err != nil {
		if key != "" {
			// An identical request holding the same key may have just won the pets.
			if replay, replayErr := s.replay(ctx, key, fingerprint); replay != nil || replayErr != nil {
				return replay, replayErr
			}
		}
		return nil, err
	}

	created, err := s.persist(ctx, order)
	if err != nil {
		if releaseErr := s.inventory.Release(ctx, petIDs); releaseErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to release pets after order persistence failed",
				slog.String("order.id", order.ID), slog.String("error", releaseErr.Error()))
			return nil, errors.Join(err, releaseErr)
		}
		return nil, err
	}

	if key != "" {
		s.rememberKey(ctx, key, fingerprint, created.ID)
	}
	s.publish(ctx, domain.OrderCreated{
		BaseEvent:  domain.BaseEvent{OrderID: created.ID, Timestamp: created.CreatedAt},
		Number:     created.Number,
		CustomerID: created.Customer.ID,
		PetIDs:     created.PetIDs(),
		Total:      created.Total,
	})
	return created, nil
}

// persist draws an order number and inserts the order, drawing again when the
// store reports a number clash.
func (s *Service) persist(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1
	for attempt := 1; ; attempt++ {
		number, err := s.numbers.Next(ctx, now)
		if err != nil {
			return nil, err
		}
		order.Number = number
		created, err := s.repo.Create(ctx, order)
		if errors.Is(err, ports.ErrDuplicateOrderNumber) && attempt < s.policy.MaxNumberAttempts {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "order number clash, drawing a new one",
				slog.String("order.number", number.String()), slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		return created, nil
	}
}

// UpdateStatus applies an administrative transition. Cancelling releases the order's pets.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	status = domain.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.IsValid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := order.Status
	changed, err := order.TransitionTo(status)
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}
	order.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, err
	}

	var released []string
	if updated.Status == domain.StatusCancelled {
		released = updated.PetIDs()
		if err := s.inventory.Release(ctx, released); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "order cancelled but pets were not released",
				slog.String("order.id", updated.ID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: order %s: %w", ErrReleaseIncomplete, updated.ID, err)
		}
	}
	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:      domain.BaseEvent{OrderID: updated.ID, Timestamp: updated.UpdatedAt},
		Number:         updated.Number,
		Status:         updated.Status,
		PreviousStatus: previous,
		ReleasedPetIDs: released,
	})
	return updated, nil
}

// UpdatePayment patches payment fields. It is independent of the status table
// and retries when a concurrent update bumped the version.
func (s *Service) UpdatePayment(ctx context.Context, id string, input ports.UpdatePaymentInput) (*domain.Order, error) {
	for attempt := 1; ; attempt++ {
		order, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		status, method := order.PaymentStatus, order.PaymentMethod
		if input.PaymentStatus != nil {
			status = domain.PaymentStatus(strings.ToLower(strings.TrimSpace(string(*input.PaymentStatus))))
		}
		if input.PaymentMethod != nil {
			method = *input.PaymentMethod
		}
		if err := order.SetPayment(status, method); err != nil {
			return nil, mapError(err)
		}
		order.UpdatedAt = s.now()
		updated, err := s.repo.Update(ctx, order)
		if errors.Is(err, ports.ErrConcurrentUpdate) && attempt < paymentUpdateAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.publish(ctx, domain.OrderPaymentUpdated{
			BaseEvent:     domain.BaseEvent{OrderID: updated.ID, Timestamp: updated.UpdatedAt},
			Number:        updated.Number,
			PaymentStatus: updated.PaymentStatus,
			PaymentMethod: updated.PaymentMethod,
		})
		return updated, nil
	}
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders returns a newest-first page of orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) (pagination.Page[*domain.Order], error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return pagination.Page[*domain.Order]{}, mapError(domain.ErrInvalidStatus)
	}
	if filter.PaymentStatus != nil && !filter.PaymentStatus.IsValid() {
		return pagination.Page[*domain.Order]{}, mapError(domain.ErrInvalidPaymentStatus)
	}
	filter.Request = filter.Request.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *Service) idempotencyKey(input ports.CreateOrderInput) (string, error) {
	if s.policy.Idempotency == IdempotencyDisabled || s.idempotency == nil {
		if s.policy.Idempotency == IdempotencyRequired {
			return "", errors.New("idempotency store not configured")
		}
		return "", nil
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" && s.policy.Idempotency == IdempotencyRequired {
		return "", ErrIdempotencyKeyRequired
	}
	return key, nil
}

// replay returns the order previously created under key, or nil when the key is unused.
func (s *Service) replay(ctx context.Context, key, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.repo.GetByID(ctx, record.OrderID)
}

func (s *Service) rememberKey(ctx context.Context, key, fingerprint, orderID string) {
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, OrderID: orderID})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record idempotency key",
			slog.String("order.id", orderID), slog.String("error", err.Error()))
	}
}

// publish ships an event; broker failures are logged and never fail the request.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event", event.EventName()),
			slog.String("order.id", event.AggregateID()),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
