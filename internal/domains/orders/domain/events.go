package domain

import "time"

// Event is the base interface for all order domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	OrderID   string
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the order the event belongs to.
func (e BaseEvent) AggregateID() string {
	return e.OrderID
}

// OrderCreated is raised once an order is persisted with its pets reserved.
type OrderCreated struct {
	BaseEvent
	Number     OrderNumber
	CustomerID string
	PetIDs     []string
	Total      float64
}

func (e OrderCreated) EventName() string { return "orders.order.created" }

// OrderStatusChanged is raised after a persisted status transition.
type OrderStatusChanged struct {
	BaseEvent
	Number         OrderNumber
	Status         Status
	PreviousStatus Status
	ReleasedPetIDs []string
}

func (e OrderStatusChanged) EventName() string { return "orders.order.status_changed" }

// OrderPaymentUpdated is raised when payment fields change.
type OrderPaymentUpdated struct {
	BaseEvent
	Number        OrderNumber
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
}

func (e OrderPaymentUpdated) EventName() string { return "orders.order.payment_updated" }
