package ports

import (
	"context"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
)

// EventPublisher ships order lifecycle events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher drops events; used when no broker is configured.
var NoopPublisher EventPublisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }
