package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthClient struct {
	token *auth.Token
	err   error
}

func (m *mockAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

func TestLoginMintsAdminSession(t *testing.T) {
	client := &mockAuthClient{token: &auth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"email": "admin@chichienterprises.com"},
	}}
	svc := NewAuthService(client, "test-secret", time.Hour, []string{"Admin@ChichiEnterprises.com"})

	resp, err := svc.Login(context.Background(), "firebase-token")
	require.NoError(t, err)
	assert.Equal(t, "admin@chichienterprises.com", resp.Email)

	claims := &domain.SafarClaims{}
	parsed, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, domain.AdminRole, claims.Role)
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	client := &mockAuthClient{token: &auth.Token{
		UID:    "uid-2",
		Claims: map[string]interface{}{"email": "visitor@example.com"},
	}}
	svc := NewAuthService(client, "test-secret", time.Hour, []string{"admin@chichienterprises.com"})

	_, err := svc.Login(context.Background(), "firebase-token")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestLoginRejectsInvalidToken(t *testing.T) {
	client := &mockAuthClient{err: errors.New("token expired")}
	svc := NewAuthService(client, "test-secret", time.Hour, nil)

	_, err := svc.Login(context.Background(), "bad-token")
	assert.Error(t, err)
}
