package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging/kafka"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging/rabbitmq"
	orderapp "github.com/Apurer/petshop-orders-api/internal/domains/orders/application"
	"github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/token"
)

// Broker selects where order lifecycle events are shipped.
type Broker string

const (
	BrokerNone     Broker = "none"
	BrokerKafka    Broker = "kafka"
	BrokerRabbitMQ Broker = "rabbitmq"
)

const defaultReconcileGrace = 15 * time.Minute

// Config carries environment-driven settings shared by the API, worker and reconciler.
type Config struct {
	Port        string
	PostgresDSN string
	RedisURL    string

	EventsBroker     Broker
	KafkaBrokers     []string
	KafkaOrderTopic  string
	RabbitMQURL      string
	RabbitMQExchange string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	JWTSecret string
	// JWTSecretGenerated is set when JWT_SECRET was missing and a random
	// per-process secret is used instead.
	JWTSecretGenerated bool
	JWTTTL             time.Duration
	AllowedOrigins     []string

	OrderPolicy    orderapp.Policy
	ReconcileGrace time.Duration
	SeedDemoData   bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:   envDefault("KAFKA_ORDER_TOPIC", kafka.DefaultTopic),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		RabbitMQExchange:  envDefault("RABBITMQ_EXCHANGE", rabbitmq.DefaultExchange),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:            token.DefaultTTL,
		AllowedOrigins:    splitList(os.Getenv("CLIENT_URL")),
		OrderPolicy:       orderapp.DefaultPolicy(),
		ReconcileGrace:    defaultReconcileGrace,
		SeedDemoData:      isTruthy(os.Getenv("SEED_DEMO_DATA")),
	}

	switch broker := Broker(strings.ToLower(envDefault("ORDER_EVENTS_BROKER", string(BrokerNone)))); broker {
	case BrokerNone:
		cfg.EventsBroker = broker
	case BrokerKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when ORDER_EVENTS_BROKER=kafka")
		}
		cfg.EventsBroker = broker
	case BrokerRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return Config{}, fmt.Errorf("RABBITMQ_URL is required when ORDER_EVENTS_BROKER=rabbitmq")
		}
		cfg.EventsBroker = broker
	default:
		return Config{}, fmt.Errorf("ORDER_EVENTS_BROKER must be one of none, kafka, rabbitmq; got %q", broker)
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretGenerated = true
	}
	if raw := strings.TrimSpace(os.Getenv("JWT_TTL_HOURS")); raw != "" {
		hours, err := positiveInt(raw)
		if err != nil {
			return Config{}, fmt.Errorf("JWT_TTL_HOURS %w", err)
		}
		cfg.JWTTTL = time.Duration(hours) * time.Hour
	}

	if raw := strings.TrimSpace(os.Getenv("ORDER_TOTAL_POLICY")); raw != "" {
		total, err := orderapp.ParseTotalPolicy(raw)
		if err != nil {
			return Config{}, fmt.Errorf("ORDER_TOTAL_POLICY: %w", err)
		}
		cfg.OrderPolicy.Total = total
	}
	if raw := strings.TrimSpace(os.Getenv("ORDER_IDEMPOTENCY")); raw != "" {
		idem, err := orderapp.ParseIdempotencyPolicy(raw)
		if err != nil {
			return Config{}, fmt.Errorf("ORDER_IDEMPOTENCY: %w", err)
		}
		cfg.OrderPolicy.Idempotency = idem
	}
	if raw := strings.TrimSpace(os.Getenv("ORDER_NUMBER_MAX_ATTEMPTS")); raw != "" {
		attempts, err := positiveInt(raw)
		if err != nil {
			return Config{}, fmt.Errorf("ORDER_NUMBER_MAX_ATTEMPTS %w", err)
		}
		cfg.OrderPolicy.MaxNumberAttempts = attempts
	}
	if raw := strings.TrimSpace(os.Getenv("RECONCILE_GRACE_MINUTES")); raw != "" {
		minutes, err := positiveInt(raw)
		if err != nil {
			return Config{}, fmt.Errorf("RECONCILE_GRACE_MINUTES %w", err)
		}
		cfg.ReconcileGrace = time.Duration(minutes) * time.Minute
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func positiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return v, nil
}

// splitList parses comma separated values, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
