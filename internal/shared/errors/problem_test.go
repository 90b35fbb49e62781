package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithExtension_LeavesReceiverUntouched(t *testing.T) {
	base := ErrConflict.WithExtension("petIds", []string{"p1"})
	derived := base.WithExtension("idempotencyKey", "key-1")

	assert.Len(t, base.Extensions, 1)
	assert.Len(t, derived.Extensions, 2)
	assert.Nil(t, ErrConflict.Extensions)
}

func TestPetProblems(t *testing.T) {
	held := NewPetsHeldProblem("pets not available: p2", []string{"p2"})
	assert.Equal(t, http.StatusConflict, held.Status)
	assert.Equal(t, TypeConflict, held.Type)
	assert.Equal(t, []string{"p2"}, held.Extensions["petIds"])

	missing := NewPetsMissingProblem("pets not found: ghost", []string{"ghost"})
	assert.Equal(t, http.StatusNotFound, missing.Status)
	assert.Equal(t, "pet", missing.Extensions["resourceType"])
	assert.Equal(t, "Resource Not Found: pets not found: ghost", missing.Error())
}

func TestNewTransitionProblem(t *testing.T) {
	p := NewTransitionProblem("cannot move cancelled order", "cancelled", "processing")

	assert.Equal(t, http.StatusConflict, p.Status)
	assert.Equal(t, TypeTransition, p.Type)
	assert.Equal(t, "cancelled", p.Extensions["from"])
	assert.Equal(t, "processing", p.Extensions["to"])
}
