package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/services"
)

// Response represents a standardized API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ListResponse represents a paginated list response
type ListResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Count       int         `json:"count"`
	Total       int64       `json:"total"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
	Data        interface{} `json:"data"`
}

// CountResponse represents an unpaginated list response
type CountResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

// SearchResponse represents a search result page
type SearchResponse struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data"`
	Pagination services.PageMeta `json:"pagination"`
	SearchTerm string            `json:"searchTerm"`
}

// Options controls how errors are rendered
type Options struct {
	// ExposeErrors adds the technical error string to error bodies
	ExposeErrors bool
}

var options Options

// Configure sets the package-wide rendering options; call it once at startup
func Configure(o Options) {
	options = o
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "Resource created successfully"
	}
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List returns a paginated list response
func List(c *fiber.Ctx, data interface{}, count int, meta services.ListMeta) error {
	return c.Status(fiber.StatusOK).JSON(ListResponse{
		Success:     true,
		Count:       count,
		Total:       meta.Total,
		CurrentPage: meta.CurrentPage,
		TotalPages:  meta.TotalPages,
		Data:        data,
	})
}

// All returns an unpaginated list with its length
func All(c *fiber.Ctx, data interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(CountResponse{
		Success: true,
		Count:   count,
		Data:    data,
	})
}

// Search returns a search result page
func Search(c *fiber.Ctx, data interface{}, meta services.PageMeta, term string) error {
	return c.Status(fiber.StatusOK).JSON(SearchResponse{
		Success:    true,
		Data:       data,
		Pagination: meta,
		SearchTerm: term,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := Response{
		Success: false,
		Message: message,
	}
	if options.ExposeErrors && err != nil {
		body.Error = err.Error()
	}
	return c.Status(statusCode).JSON(body)
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message, nil)
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized access"
	}
	return Error(c, fiber.StatusUnauthorized, message, nil)
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message, nil)
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, message, nil)
}

// StatusFor maps a service error to its HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidID):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError renders any error returned by a service.
// fallback is used as the message for errors outside the service taxonomy.
func FromError(c *fiber.Ctx, err error, fallback string) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return Error(c, StatusFor(err), svcErr.Message, svcErr.Err)
	}
	if fallback == "" {
		fallback = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, fallback, err)
}
