package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/chichienterprises/safarbook/internal/service"
)

// AuthHandler handles the admin login endpoint.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/auth/login. The client signs in against Firebase
// and sends the resulting ID token; an allowlisted admin gets a session
// token back.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Missing Authorization header",
		})
	}

	// Format: "Bearer <token>"
	token := authHeader
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	resp, err := h.authService.Login(c.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Not an admin account",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token",
		})
	}

	return c.JSON(resp)
}
