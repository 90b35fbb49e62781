package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapp "github.com/Apurer/petshop-orders-api/internal/domains/orders/application"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ORDER_EVENTS_BROKER", "JWT_SECRET", "JWT_TTL_HOURS", "CLIENT_URL", "ORDER_TOTAL_POLICY", "ORDER_IDEMPOTENCY", "ORDER_NUMBER_MAX_ATTEMPTS", "RECONCILE_GRACE_MINUTES"} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BrokerNone, cfg.EventsBroker)
	assert.True(t, cfg.JWTSecretGenerated)
	assert.Len(t, cfg.JWTSecret, 64)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, orderapp.DefaultPolicy(), cfg.OrderPolicy)
	assert.Equal(t, 15*time.Minute, cfg.ReconcileGrace)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ORDER_EVENTS_BROKER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("CLIENT_URL", "http://localhost:3000,https://shop.example.com")
	t.Setenv("ORDER_TOTAL_POLICY", "match_items")
	t.Setenv("ORDER_IDEMPOTENCY", "required")
	t.Setenv("ORDER_NUMBER_MAX_ATTEMPTS", "9")
	t.Setenv("RECONCILE_GRACE_MINUTES", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BrokerKafka, cfg.EventsBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.JWTSecretGenerated)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, orderapp.Policy{Total: orderapp.TotalMatchItems, Idempotency: orderapp.IdempotencyRequired, MaxNumberAttempts: 9}, cfg.OrderPolicy)
	assert.Equal(t, 30*time.Minute, cfg.ReconcileGrace)
}

func TestLoadConfig_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown broker":      {"ORDER_EVENTS_BROKER": "nats"},
		"kafka without peers": {"ORDER_EVENTS_BROKER": "kafka", "KAFKA_BROKERS": ""},
		"rabbit without url":  {"ORDER_EVENTS_BROKER": "rabbitmq", "RABBITMQ_URL": ""},
		"bad ttl":             {"JWT_TTL_HOURS": "-1"},
		"bad total policy":    {"ORDER_TOTAL_POLICY": "maybe"},
		"bad grace":           {"RECONCILE_GRACE_MINUTES": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
