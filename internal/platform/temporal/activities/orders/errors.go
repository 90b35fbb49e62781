package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/application"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	petsports "github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
)

// Application error types that cross the workflow boundary. Retrying any of
// them cannot succeed.
const (
	ErrTypeValidation          = "OrderValidation"
	ErrTypePetConflict         = "PetConflict"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
)

// NonRetryableErrorTypes lists the types the placement retry policy gives up on.
var NonRetryableErrorTypes = []string{ErrTypeValidation, ErrTypePetConflict, ErrTypeIdempotencyConflict}

type conflictDetails struct {
	PetIDs  []string
	Missing []string
}

// EncodeError converts business failures into typed application errors.
// Infrastructure errors pass through and are retried.
func EncodeError(err error) error {
	var conflict *petsports.ConflictError
	switch {
	case errors.As(err, &conflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypePetConflict, err,
			conflictDetails{PetIDs: conflict.PetIDs, Missing: conflict.Missing})
	case errors.Is(err, application.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeValidation, err)
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	default:
		return err
	}
}

// DecodeError restores the sentinel errors behind a workflow failure so
// callers can keep using errors.Is and errors.As.
func DecodeError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case ErrTypePetConflict:
		var details conflictDetails
		if appErr.HasDetails() && appErr.Details(&details) == nil {
			return &petsports.ConflictError{PetIDs: details.PetIDs, Missing: details.Missing}
		}
		return remoteError{msg: appErr.Message(), target: petsports.ErrPetUnavailable}
	case ErrTypeValidation:
		return remoteError{msg: appErr.Message(), target: application.ErrInvalidInput}
	case ErrTypeIdempotencyConflict:
		return remoteError{msg: appErr.Message(), target: ports.ErrIdempotencyConflict}
	default:
		return err
	}
}

type remoteError struct {
	msg    string
	target error
}

func (e remoteError) Error() string { return e.msg }
func (e remoteError) Unwrap() error { return e.target }
