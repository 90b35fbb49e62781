package application

import (
	"fmt"
	"strings"
)

// TotalPolicy decides how an order total relates to its item prices.
type TotalPolicy string

const (
	// TotalTrust accepts any positive total.
	TotalTrust TotalPolicy = "trust"
	// TotalMatchItems requires the total to equal the sum of item prices.
	TotalMatchItems TotalPolicy = "match_items"
)

// IdempotencyPolicy decides how Idempotency-Key headers are treated on create.
type IdempotencyPolicy string

const (
	IdempotencyDisabled IdempotencyPolicy = "disabled"
	IdempotencyOptional IdempotencyPolicy = "optional"
	IdempotencyRequired IdempotencyPolicy = "required"
)

const defaultNumberAttempts = 5

// Policy groups the configurable create-order rules.
type Policy struct {
	Total             TotalPolicy
	Idempotency       IdempotencyPolicy
	MaxNumberAttempts int
}

// DefaultPolicy trusts totals, honours idempotency keys when sent and retries
// order number clashes five times.
func DefaultPolicy() Policy {
	return Policy{Total: TotalTrust, Idempotency: IdempotencyOptional, MaxNumberAttempts: defaultNumberAttempts}
}

func (p Policy) normalized() Policy {
	if p.Total == "" {
		p.Total = TotalTrust
	}
	if p.Idempotency == "" {
		p.Idempotency = IdempotencyOptional
	}
	if p.MaxNumberAttempts <= 0 {
		p.MaxNumberAttempts = defaultNumberAttempts
	}
	return p
}

// ParseTotalPolicy maps a config value onto a TotalPolicy; empty means trust.
func ParseTotalPolicy(raw string) (TotalPolicy, error) {
	switch TotalPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TotalTrust:
		return TotalTrust, nil
	case TotalMatchItems:
		return TotalMatchItems, nil
	default:
		return "", fmt.Errorf("unknown total policy %q", raw)
	}
}

// ParseIdempotencyPolicy maps a config value onto an IdempotencyPolicy; empty means optional.
func ParseIdempotencyPolicy(raw string) (IdempotencyPolicy, error) {
	switch IdempotencyPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", IdempotencyOptional:
		return IdempotencyOptional, nil
	case IdempotencyDisabled:
		return IdempotencyDisabled, nil
	case IdempotencyRequired:
		return IdempotencyRequired, nil
	default:
		return "", fmt.Errorf("unknown idempotency policy %q", raw)
	}
}
