package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

type normalizedCreateOrder struct {
	Customer      normalizedCustomer `json:"customer"`
	Items         []normalizedItem   `json:"items"`
	Total         float64            `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus"`
}

type normalizedCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type normalizedItem struct {
	PetID string  `json:"petId"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order payload (excluding the idempotency key).
// Item order does not affect the fingerprint.
func FingerprintCreateOrder(input ports.CreateOrderInput) (string, error) {
	payload, err := json.Marshal(normalizeCreateOrder(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeCreateOrder(input ports.CreateOrderInput) normalizedCreateOrder {
	items := make([]normalizedItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, normalizedItem{
			PetID: strings.TrimSpace(item.PetID),
			Name:  item.Name,
			Price: item.Price,
			Image: item.Image,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PetID < items[j].PetID })
	method := domain.NormalizePaymentMethod(input.PaymentMethod)
	if method == "" {
		method = domain.PaymentCash
	}
	status := input.PaymentStatus
	if status == "" {
		status = domain.PaymentUnpaid
	}
	return normalizedCreateOrder{
		Customer: normalizedCustomer{
			ID:    strings.TrimSpace(input.Customer.ID),
			Name:  strings.TrimSpace(input.Customer.Name),
			Email: strings.ToLower(strings.TrimSpace(input.Customer.Email)),
			Phone: strings.TrimSpace(input.Customer.Phone),
		},
		Items:         items,
		Total:         input.Total,
		PaymentMethod: string(method),
		PaymentStatus: string(status),
	}
}
