// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 response body. Extensions carry the ids a
// client needs to react, such as the pets that blocked an order.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property. The
// receiver's map is never mutated, so templates stay reusable.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

const (
	TypeValidation   = "/problems/validation-error"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeTransition   = "/problems/invalid-transition"
	TypeInternal     = "/problems/internal-error"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeBadRequest   = "/problems/bad-request"
)

func template(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	ErrNotFound          = template(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrValidation        = template(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest        = template(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrConflict          = template(TypeConflict, "Conflict", http.StatusConflict)
	ErrInvalidTransition = template(TypeTransition, "Invalid Transition", http.StatusConflict)
	ErrInternal          = template(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
	ErrUnauthorized      = template(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden         = template(TypeForbidden, "Forbidden", http.StatusForbidden)
)

// NewValidationProblem reports field-level input errors under "fields".
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewNotFoundProblem names the missing resource and its identifier.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}

// NewPetsHeldProblem is the 409 for an order whose pets are reserved by
// another order.
func NewPetsHeldProblem(detail string, petIDs []string) ProblemDetail {
	return ErrConflict.WithDetail(detail).WithExtension("petIds", petIDs)
}

// NewPetsMissingProblem is the 404 for an order naming unknown pets.
func NewPetsMissingProblem(detail string, petIDs []string) ProblemDetail {
	return ErrNotFound.
		WithDetail(detail).
		WithExtension("resourceType", "pet").
		WithExtension("petIds", petIDs)
}

// NewTransitionProblem is the 409 for a status change the order lifecycle forbids.
func NewTransitionProblem(detail, from, to string) ProblemDetail {
	return ErrInvalidTransition.
		WithDetail(detail).
		WithExtension("from", from).
		WithExtension("to", to)
}
