package utils

import (
	"log"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

// MakeHTTPHandleFunc adapts a store-aware handler into a fiber.Handler
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			log.Printf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
			return response.InternalServerError(c, "")
		}
		return nil
	}
}
