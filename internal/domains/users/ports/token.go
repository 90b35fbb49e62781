package ports

import "errors"

// ErrInvalidToken covers malformed, expired, and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies signed session tokens carrying the user id.
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}
