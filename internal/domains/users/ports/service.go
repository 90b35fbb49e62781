package ports

import (
	"context"

	"github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
)

// RegisterInput carries a new account's profile and plain password.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  *domain.User
}

// Service exposes the auth use cases the HTTP layer consumes.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
