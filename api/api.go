package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "school-admin-api",
			ErrorHandler: ErrorHandler,
		}),
		listenAddress: listenAddress,
	}
}

// ErrorHandler renders errors that escape handlers, including unknown routes, in the API envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	if code == fiber.StatusNotFound {
		return response.NotFound(c, "Route not found")
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("[API] %s %s: %v", c.Method(), c.Path(), err)
	}

	return response.Error(c, code, message, err)
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops the server gracefully
func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}
