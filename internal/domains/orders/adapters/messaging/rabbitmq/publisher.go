package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/adapters/messaging"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// DefaultExchange is the topic exchange order events are published to.
const DefaultExchange = "orders"

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends order events to a topic exchange using the event name as
// routing key (e.g. orders.order.created), so consumers can bind orders.order.#.
type Publisher struct {
	ch       Channel
	exchange string
	source   string
}

func NewPublisher(ch Channel, exchange string) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{ch: ch, exchange: exchange, source: messaging.DefaultSource}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.ch == nil {
		return errors.New("rabbitmq publisher not configured")
	}
	env, err := messaging.NewEnvelope(p.source, event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	headers := amqp.Table{}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for key, value := range carrier {
		headers[key] = value
	}
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		env.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/cloudevents+json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Type:         env.Type,
			Timestamp:    env.Time,
			Headers:      headers,
			Body:         body,
		},
	)
}
