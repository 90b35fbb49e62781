package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
)

// fakeTokens encodes the user id verbatim behind a prefix.
type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, error) { return "tok:" + userID, nil }

func (fakeTokens) Verify(token string) (string, error) {
	if len(token) <= 4 || token[:4] != "tok:" {
		return "", ports.ErrInvalidToken
	}
	return token[4:], nil
}

func newTestService() *Service {
	svc := NewService(memory.NewRepository(), fakeTokens{})
	n := 0
	svc.newID = func() string {
		n++
		return "user-" + string(rune('0'+n))
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, ports.RegisterInput{Name: "Ada", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	session, err := svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok:user-1", session.Token)
	assert.Equal(t, "user-1", session.User.ID)

	authed, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", authed.Email)
}

func TestRegister_RejectsDuplicateEmailAndBadInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, ports.RegisterInput{Name: "Ada", Email: "ADA@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ports.ErrDuplicateEmail)

	_, err = svc.Register(ctx, ports.RegisterInput{Name: "Bob", Email: "bob", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "abc"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.Register(ctx, ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret1", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, ports.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	for name, creds := range map[string][2]string{
		"unknown email":  {"nobody@example.com", "secret1"},
		"wrong password": {"ada@example.com", "wrong-one"},
		"empty password": {"ada@example.com", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, creds[0], creds[1])
			assert.ErrorIs(t, err, ErrAuthentication)
			assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ports.ErrInvalidToken)

	// Valid signature for an account that no longer exists.
	_, err = svc.Authenticate(ctx, "tok:ghost")
	assert.ErrorIs(t, err, ports.ErrInvalidToken)
}

type brokenRepo struct{ ports.Repository }

func (brokenRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("db down")
}

func TestLogin_PropagatesStoreFailure(t *testing.T) {
	svc := NewService(brokenRepo{}, fakeTokens{})
	_, err := svc.Login(context.Background(), "ada@example.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthentication)
}
