package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrIdempotencyKeyRequired is returned when the policy demands a key and none was sent.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrReleaseIncomplete means the order was cancelled but some pets could not be released yet.
	ErrReleaseIncomplete = errors.New("order cancelled but pet release is incomplete")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidTotal) ||
		errors.Is(err, domain.ErrTotalMismatch) ||
		errors.Is(err, domain.ErrInvalidItem) ||
		errors.Is(err, domain.ErrDuplicatePet) ||
		errors.Is(err, domain.ErrInvalidCustomer) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrIdempotencyKeyRequired) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
