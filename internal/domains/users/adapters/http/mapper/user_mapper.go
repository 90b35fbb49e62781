package mapper

import (
	"time"

	userdomain "github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
)

// LoginRequest is the credential payload accepted by the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the public user representation; the password hash never leaves the service.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse pairs the bearer token with the signed-in user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func FromSession(session *userports.Session) LoginResponse {
	if session == nil {
		return LoginResponse{}
	}
	return LoginResponse{Token: session.Token, User: FromDomainUser(session.User)}
}
