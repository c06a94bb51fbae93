package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the only role the service mints; visitors are anonymous.
const AdminRole = "admin"

// SafarClaims represents custom JWT claims for admin sessions.
type SafarClaims struct {
	UID   string `json:"uid"` // Firebase UID
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
