package admin

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/services"
	"github.com/sahilchouksey/school-admin-api/utils/middleware"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// AdminHandler handles admin registration and authentication
type AdminHandler struct {
	admins               *services.AdminService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAdminHandler creates a new admin handler.
// bruteForceProtection may be nil when Redis is unavailable.
func NewAdminHandler(admins *services.AdminService, bruteForceProtection *middleware.BruteForceProtection) *AdminHandler {
	return &AdminHandler{
		admins:               admins,
		bruteForceProtection: bruteForceProtection,
	}
}

// Register handles POST /api/admins/register
func (h *AdminHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterAdminInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.admins.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err, "Failed to register admin")
	}

	return response.Created(c, "Admin registered successfully", result)
}

// Login handles POST /api/admins/login
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ip := c.IP()
	ctx := c.UserContext()

	result, err := h.admins.Login(ctx, req)
	if err != nil {
		// Record failed attempt
		if h.bruteForceProtection != nil && errors.Is(err, services.ErrInvalidCredentials) {
			if recErr := h.bruteForceProtection.RecordFailedAttempt(ctx, ip); recErr != nil {
				log.Printf("[AdminHandler] failed to record login attempt for %s: %v", ip, recErr)
			}
		}
		return response.FromError(c, err, "Failed to login")
	}

	// Clear failed attempts on successful login
	if h.bruteForceProtection != nil {
		if err := h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip); err != nil {
			log.Printf("[AdminHandler] failed to clear login attempts for %s: %v", ip, err)
		}
	}

	return response.SuccessWithMessage(c, "Login successful", result)
}

// Me handles GET /api/admins/me
func (h *AdminHandler) Me(c *fiber.Ctx) error {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		return response.Unauthorized(c, "Admin not authenticated")
	}

	admin, err := h.admins.GetByID(c.UserContext(), adminID.String())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.Unauthorized(c, "Admin no longer exists")
		}
		return response.FromError(c, err, "Failed to fetch admin")
	}

	return response.Success(c, admin)
}
