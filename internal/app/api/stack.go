package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordersmemory "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging/kafka"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging/rabbitmq"
	ordersobs "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/redis"
	orderapp "github.com/Apurer/petshop-orders-api/internal/domains/orders/application"
	orderports "github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	petsmemory "github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/observability"
	petspostgres "github.com/Apurer/petshop-orders-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/petshop-orders-api/internal/domains/pets/application"
	petsports "github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
	usersmemory "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/memory"
	userspostgres "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
	"github.com/Apurer/petshop-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/petshop-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/petshop-orders-api/internal/platform/postgres"
	platformrabbitmq "github.com/Apurer/petshop-orders-api/internal/platform/rabbitmq"
	platformredis "github.com/Apurer/petshop-orders-api/internal/platform/redis"
)

// Stack holds the adapters and services shared by every process: the API,
// the Temporal worker and the reservation reconciler.
type Stack struct {
	Logger      *slog.Logger
	PetRepo     petsports.Repository
	Coordinator petsports.Coordinator
	OrderRepo   orderports.Repository
	Orders      orderports.Service
	UserRepo    userports.Repository
	// Durable is set when state lives in Postgres and is therefore shared
	// with other processes such as the Temporal worker.
	Durable bool

	closers []func()
}

// BuildStack connects to whatever backing services are configured and wires
// the domain services on top. Postgres, Redis and the broker are optional;
// missing ones fall back to in-memory adapters or a no-op publisher.
func BuildStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Stack, error) {
	logger := effectiveLogger(instruments)
	s := &Stack{Logger: logger}

	db := s.connectPostgres(ctx, cfg, logger)
	var (
		sequences   orderports.SequenceStore
		idempotency orderports.IdempotencyStore
	)
	if db != nil {
		s.PetRepo = petspostgres.NewRepository(db)
		s.OrderRepo = orderspostgres.NewRepository(db)
		s.UserRepo = userspostgres.NewRepository(db)
		sequences = orderspostgres.NewSequenceStore(db)
		idempotency = orderspostgres.NewIdempotencyStore(db)
		s.Durable = true
		logger.Info("repositories configured with postgres")
	} else {
		s.PetRepo = petsmemory.NewRepository()
		s.OrderRepo = ordersmemory.NewRepository()
		s.UserRepo = usersmemory.NewRepository()
		sequences = ordersmemory.NewSequenceStore()
		idempotency = ordersmemory.NewIdempotencyStore()
	}

	redisClient, closeRedis := platformredis.ConnectOptional(ctx, cfg.RedisURL, logger)
	s.closers = append(s.closers, closeRedis)
	if redisClient != nil {
		sequences = ordersredis.NewSequenceStore(redisClient)
		logger.Info("order numbers allocated from redis")
	}

	publisher, err := s.buildPublisher(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Coordinator = petsobs.New(
		petsapp.NewCoordinator(s.PetRepo),
		petsobs.WithLogger(logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	coreOrders := orderapp.NewService(
		s.OrderRepo,
		s.Coordinator,
		sequences,
		orderapp.WithIdempotencyStore(idempotency),
		orderapp.WithEventPublisher(publisher),
		orderapp.WithPolicy(cfg.OrderPolicy),
		orderapp.WithLogger(logger),
	)
	s.Orders = ordersobs.New(
		coreOrders,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return s, nil
}

// Close releases connections in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func (s *Stack) connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) *gorm.DB {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil
	}
	if err := migrations.Run(db); err != nil {
		_ = sqlDB.Close()
		logger.Warn("failed to migrate postgres schema, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil
	}
	s.closers = append(s.closers, func() { _ = sqlDB.Close() })
	return db
}

func (s *Stack) buildPublisher(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.EventPublisher, error) {
	switch cfg.EventsBroker {
	case BrokerKafka:
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		s.closers = append(s.closers, func() { _ = publisher.Close() })
		logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrderTopic))
		return publisher, nil
	case BrokerRabbitMQ:
		conn, err := platformrabbitmq.Setup(ctx, cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		logger.Info("order events published to rabbitmq", slog.String("exchange", cfg.RabbitMQExchange))
		return rabbitmq.NewPublisher(conn.Channel, cfg.RabbitMQExchange), nil
	default:
		return orderports.NoopPublisher, nil
	}
}

// ConnectTemporal dials Temporal with the OpenTelemetry tracing interceptor
// and the process logger.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
