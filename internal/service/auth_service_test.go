package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlfredoZC/DentiAI/internal/domain"
	"github.com/AlfredoZC/DentiAI/internal/repository/memory"
)

func newAuthService() *AuthService {
	return NewAuthService(memory.NewUserRepository(), "test-secret", 30*time.Minute)
}

func TestRegisterThenDuplicate(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username)
	require.Empty(t, user.Password)

	_, err = svc.Register(ctx, domain.RegisterUserDTO{Username: "ana", Password: "otherpass"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginIssuesValidBearerToken(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "ana", Password: "secret123"})
	require.NoError(t, err)

	token, err := svc.Login(ctx, domain.LoginUserDTO{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "bearer", token.TokenType)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "ana", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "ana", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newAuthService()
	_, err := svc.Login(context.Background(), domain.LoginUserDTO{Username: "nobody", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService()
	_, err := svc.ValidateToken("not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuing := newAuthService()
	ctx := context.Background()
	_, err := issuing.Register(ctx, domain.RegisterUserDTO{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	token, err := issuing.Login(ctx, domain.LoginUserDTO{Username: "ana", Password: "secret123"})
	require.NoError(t, err)

	verifying := NewAuthService(memory.NewUserRepository(), "other-secret", 30*time.Minute)
	_, err = verifying.ValidateToken(token.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
