package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
)

// DefaultSource identifies this service in published envelopes.
const DefaultSource = "petshop-orders-api"

// Envelope is a CloudEvents 1.0 structured-mode event.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

type orderCreatedData struct {
	OrderID     string   `json:"orderId"`
	OrderNumber string   `json:"orderNumber"`
	CustomerID  string   `json:"customerId,omitempty"`
	PetIDs      []string `json:"petIds"`
	Total       float64  `json:"total"`
}

type statusChangedData struct {
	OrderID        string   `json:"orderId"`
	OrderNumber    string   `json:"orderNumber"`
	Status         string   `json:"status"`
	PreviousStatus string   `json:"previousStatus"`
	ReleasedPetIDs []string `json:"releasedPetIds,omitempty"`
}

type paymentUpdatedData struct {
	OrderID       string `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod"`
}

// NewEnvelope wraps a domain event with a fresh event id.
func NewEnvelope(source string, event domain.Event) (Envelope, error) {
	if source == "" {
		source = DefaultSource
	}
	data, err := json.Marshal(payload(event))
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	occurred := event.OccurredAt()
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return Envelope{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Source:          source,
		Type:            event.EventName(),
		Subject:         event.AggregateID(),
		Time:            occurred.UTC(),
		DataContentType: "application/json",
		Data:            data,
	}, nil
}

func payload(event domain.Event) any {
	switch e := event.(type) {
	case domain.OrderCreated:
		return orderCreatedData{
			OrderID:     e.OrderID,
			OrderNumber: e.Number.String(),
			CustomerID:  e.CustomerID,
			PetIDs:      e.PetIDs,
			Total:       e.Total,
		}
	case domain.OrderStatusChanged:
		return statusChangedData{
			OrderID:        e.OrderID,
			OrderNumber:    e.Number.String(),
			Status:         string(e.Status),
			PreviousStatus: string(e.PreviousStatus),
			ReleasedPetIDs: e.ReleasedPetIDs,
		}
	case domain.OrderPaymentUpdated:
		return paymentUpdatedData{
			OrderID:       e.OrderID,
			OrderNumber:   e.Number.String(),
			PaymentStatus: string(e.PaymentStatus),
			PaymentMethod: string(e.PaymentMethod),
		}
	default:
		return map[string]string{"orderId": event.AggregateID()}
	}
}
