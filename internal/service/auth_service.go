package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// FirebaseAuthClient defines the interface for Firebase Auth operations.
// This allows mocking for tests.
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService exchanges a Firebase ID token for a service session token.
// The admin panel is allowlist-based: only configured agency emails get an
// admin session; nobody else can reach the write endpoints.
type AuthService struct {
	authClient  FirebaseAuthClient
	jwtSecret   string
	tokenExpiry time.Duration
	adminEmails map[string]bool
}

// NewAuthService creates a new auth service
func NewAuthService(authClient FirebaseAuthClient, jwtSecret string, tokenExpiry time.Duration, adminEmails []string) *AuthService {
	allow := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		allow[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &AuthService{
		authClient:  authClient,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		adminEmails: allow,
	}
}

// LoginResponse contains the minted session token.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login verifies the Firebase token, checks the admin allowlist, and mints
// a session JWT.
func (s *AuthService) Login(ctx context.Context, firebaseToken string) (*LoginResponse, error) {
	token, err := s.authClient.VerifyIDToken(ctx, firebaseToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	if !s.adminEmails[strings.ToLower(email)] {
		return nil, fmt.Errorf("%w: %s is not an admin account", domain.ErrPermissionDenied, email)
	}

	signed, err := s.generateSessionToken(token.UID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{Token: signed, Email: email}, nil
}

func (s *AuthService) generateSessionToken(uid, email string) (string, error) {
	claims := domain.SafarClaims{
		UID:   uid,
		Email: email,
		Role:  domain.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
