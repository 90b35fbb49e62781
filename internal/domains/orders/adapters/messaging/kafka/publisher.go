package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// DefaultTopic receives every order lifecycle event.
const DefaultTopic = "orders.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes order events to Kafka keyed by order id, so events of one
// order keep their relative order within a partition.
type Publisher struct {
	writer     messageWriter
	source     string
	propagator propagation.TextMapPropagator
}

type Option func(*Publisher)

// WithSource overrides the envelope source attribute.
func WithSource(source string) Option {
	return func(p *Publisher) { p.source = source }
}

// WithPropagator overrides the propagator used to inject trace headers.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(p *Publisher) { p.propagator = propagator }
}

func withWriter(w messageWriter) Option {
	return func(p *Publisher) { p.writer = w }
}

// NewPublisher builds a publisher over a kafka-go Writer for topic.
func NewPublisher(brokers []string, topic string, opts ...Option) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	p := &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		source: messaging.DefaultSource,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not configured")
	}
	env, err := messaging.NewEnvelope(p.source, event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	headers := []kafkago.Header{
		{Key: "ce_id", Value: []byte(env.ID)},
		{Key: "ce_type", Value: []byte(env.Type)},
		{Key: "content-type", Value: []byte("application/cloudevents+json")},
	}
	carrier := propagation.MapCarrier{}
	p.textMapPropagator().Inject(ctx, carrier)
	for key, value := range carrier {
		headers = append(headers, kafkago.Header{Key: key, Value: []byte(value)})
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(event.AggregateID()),
		Value:   body,
		Headers: headers,
		Time:    env.Time,
	})
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Publisher) textMapPropagator() propagation.TextMapPropagator {
	if p.propagator != nil {
		return p.propagator
	}
	return otel.GetTextMapPropagator()
}
