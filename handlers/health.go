package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// HandleCheckHealth handles GET /ping
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		log.Printf("[Health] database check failed: %v", err)
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unavailable", err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "pong"})
}
