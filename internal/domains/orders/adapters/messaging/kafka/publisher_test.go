package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublisher_WritesKeyedEnvelopeWithTraceContext(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(nil, "", withWriter(w), WithPropagator(propagation.TraceContext{}))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	err := p.Publish(ctx, domain.OrderCreated{
		BaseEvent: domain.BaseEvent{OrderID: "o1"},
		Number:    "ORD-202403-001",
		PetIDs:    []string{"p1"},
		Total:     100,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "o1", string(msg.Key))
	assert.Equal(t, "orders.order.created", header(msg, "ce_type"))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", header(msg, "traceparent"))

	var env messaging.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, header(msg, "ce_id"), env.ID)
	assert.Equal(t, "orders.order.created", env.Type)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PropagatesWriteErrors(t *testing.T) {
	p := NewPublisher(nil, "orders", withWriter(&fakeWriter{err: errors.New("leader not available")}))

	err := p.Publish(context.Background(), domain.OrderPaymentUpdated{BaseEvent: domain.BaseEvent{OrderID: "o1"}})
	require.Error(t, err)
}
