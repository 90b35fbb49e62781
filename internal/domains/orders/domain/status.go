package domain

import (
	"errors"
	"fmt"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)

// validTransitions lists every status an order may move to from a given status.
// Cancelled is terminal. Staying in the same non-terminal status is allowed as a no-op.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusProcessing: {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusCancelled:  {},
}

// AllStatuses returns the statuses in display order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the table allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// Unwrap lets callers match ErrInvalidTransition with errors.Is.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
