package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sahilchouksey/school-admin-api/utils/auth"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// Locals keys set by AuthMiddleware
const (
	LocalAdminID    = "admin_id"
	LocalAdminEmail = "admin_email"
	LocalClaims     = "claims"
	LocalTokenJTI   = "token_jti"
)

// AuthMiddleware handles admin JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// Required is middleware that requires a valid admin access token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		// Validate token
		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		adminID, err := uuid.Parse(claims.AdminID)
		if err != nil {
			return response.Unauthorized(c, "Invalid token")
		}

		// Store admin info in context
		c.Locals(LocalAdminID, adminID)
		c.Locals(LocalAdminEmail, claims.Email)
		c.Locals(LocalClaims, claims)
		c.Locals(LocalTokenJTI, claims.ID)

		return c.Next()
	}
}

// GetAdminID returns the authenticated admin id set by Required
func GetAdminID(c *fiber.Ctx) (uuid.UUID, bool) {
	adminID, ok := c.Locals(LocalAdminID).(uuid.UUID)
	return adminID, ok
}
