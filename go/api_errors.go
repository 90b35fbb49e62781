package petshopserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/petshop-orders-api/internal/domains/orders/application"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	petsports "github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
	userapp "github.com/Apurer/petshop-orders-api/internal/domains/users/application"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/petshop-orders-api/internal/shared/errors"
)

// responder translates domain and application errors into Problem Details.
// Mappers run in order; the first match wins.
var responder = apierrors.NewChainedResponder("",
	mapPetConflict,
	mapInvalidTransition,
	mapIdempotencyConflict,
	mapValidation,
	mapNotFound,
	mapConcurrentUpdate,
	mapAuthentication,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func mapPetConflict(err error) (apierrors.ProblemDetail, bool) {
	var conflict *petsports.ConflictError
	if !errors.As(err, &conflict) {
		return apierrors.ProblemDetail{}, false
	}
	if len(conflict.PetIDs) > 0 {
		return apierrors.NewPetsHeldProblem(conflict.Error(), conflict.PetIDs), true
	}
	return apierrors.NewPetsMissingProblem(conflict.Error(), conflict.Missing), true
}

func mapInvalidTransition(err error) (apierrors.ProblemDetail, bool) {
	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return apierrors.NewTransitionProblem(transition.Error(), string(transition.From), string(transition.To)), true
	}
	if errors.Is(err, domain.ErrInvalidTransition) {
		return apierrors.ErrInvalidTransition.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapIdempotencyConflict(err error) (apierrors.ProblemDetail, bool) {
	if !errors.Is(err, orderports.ErrIdempotencyConflict) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrConflict.WithDetail("idempotency key was already used with a different request"), true
}

func mapValidation(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderapp.ErrInvalidInput) || errors.Is(err, userapp.ErrInvalidInput) {
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapNotFound(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderports.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "order"), true
	}
	if errors.Is(err, userports.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "user"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapConcurrentUpdate(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderports.ErrConcurrentUpdate) || errors.Is(err, userports.ErrDuplicateEmail) {
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapAuthentication(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, userapp.ErrAuthentication) {
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
