package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// PaymentStatus tracks whether the customer settled the order.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// PaymentMethod enumerates the accepted ways of paying for an order.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

var (
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrInvalidTotal         = errors.New("order total must be greater than zero")
	ErrTotalMismatch        = errors.New("order total does not match the sum of item prices")
	ErrInvalidItem          = errors.New("order item is invalid")
	ErrDuplicatePet         = errors.New("order references the same pet more than once")
	ErrInvalidCustomer      = errors.New("order customer is invalid")
	ErrInvalidPaymentStatus = errors.New("payment status is invalid")
	ErrInvalidPaymentMethod = errors.New("payment method is invalid")
)

// totalTolerance absorbs float rounding when comparing totals to item sums.
const totalTolerance = 0.005

// Customer is a snapshot of the buyer copied at creation time.
type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Item is a single pet line on an order.
type Item struct {
	PetID string
	Name  string
	Price float64
	Image string
}

// Order models the purchase aggregate. Orders are never physically deleted.
type Order struct {
	ID            string
	Number        OrderNumber
	Customer      Customer
	Items         []Item
	Total         float64
	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder builds a pending order and enforces creation invariants.
// Empty payment fields fall back to unpaid and cash.
func NewOrder(id string, customer Customer, items []Item, total float64, method PaymentMethod, payment PaymentStatus) (*Order, error) {
	order := &Order{
		ID:       id,
		Customer: customer,
		Items:    append([]Item(nil), items...),
		Total:    total,
		Status:   StatusPending,
	}
	if err := order.SetPayment(payment, method); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces the structural invariants of the aggregate.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	if !(o.Total > 0) || math.IsInf(o.Total, 0) {
		return ErrInvalidTotal
	}
	if strings.TrimSpace(o.Customer.Name) == "" || strings.TrimSpace(o.Customer.Email) == "" {
		return ErrInvalidCustomer
	}
	seen := make(map[string]struct{}, len(o.Items))
	for i, item := range o.Items {
		if strings.TrimSpace(item.PetID) == "" {
			return fmt.Errorf("%w: item %d has no pet id", ErrInvalidItem, i)
		}
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidItem, i)
		}
		if item.Price < 0 || math.IsNaN(item.Price) {
			return fmt.Errorf("%w: item %d has a negative price", ErrInvalidItem, i)
		}
		if _, dup := seen[item.PetID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePet, item.PetID)
		}
		seen[item.PetID] = struct{}{}
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !o.PaymentStatus.IsValid() {
		return ErrInvalidPaymentStatus
	}
	if !o.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// ItemsTotal sums the item prices.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Price
	}
	return sum
}

// TotalMatchesItems reports whether Total equals the item sum within a cent.
func (o *Order) TotalMatchesItems() bool {
	return math.Abs(o.Total-o.ItemsTotal()) <= totalTolerance
}

// PetIDs returns the referenced pet ids in item order.
func (o *Order) PetIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.PetID)
	}
	return ids
}

// IsActive reports whether the order still holds its pets.
func (o *Order) IsActive() bool {
	return o.Status != StatusCancelled
}

// TransitionTo moves the order to next, enforcing the status table.
// It returns true when the status actually changed.
func (o *Order) TransitionTo(next Status) (bool, error) {
	if !next.IsValid() {
		return false, ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(next) {
		return false, &TransitionError{From: o.Status, To: next}
	}
	if o.Status == next {
		return false, nil
	}
	o.Status = next
	return true, nil
}

// SetPayment applies payment fields; empty values default to unpaid/cash.
func (o *Order) SetPayment(status PaymentStatus, method PaymentMethod) error {
	if status == "" {
		status = PaymentUnpaid
	}
	if method == "" {
		method = PaymentCash
	}
	method = NormalizePaymentMethod(method)
	if !status.IsValid() {
		return ErrInvalidPaymentStatus
	}
	if !method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	o.PaymentStatus = status
	o.PaymentMethod = method
	return nil
}

// Clone returns a deep copy so adapters never share item slices.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}

// IsValid reports whether the payment status is recognised.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

// IsValid reports whether the payment method is recognised.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBankTransfer:
		return true
	default:
		return false
	}
}

// NormalizePaymentMethod maps the legacy credit_card value onto card.
func NormalizePaymentMethod(m PaymentMethod) PaymentMethod {
	v := PaymentMethod(strings.ToLower(strings.TrimSpace(string(m))))
	if v == "credit_card" {
		return PaymentCard
	}
	return v
}
