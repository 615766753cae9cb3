package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/school-admin-api/database"
	"github.com/sahilchouksey/school-admin-api/utils/response"
)

func TestMakeHTTPHandleFunc_RendersInternalError(t *testing.T) {
	app := fiber.New()
	app.Get("/", MakeHTTPHandleFunc(func(c *fiber.Ctx, store database.Storage) error {
		return errors.New("store exploded")
	}, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var body response.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError || body.Success || body.Message != "Internal server error" {
		t.Errorf("unexpected response %d %+v", resp.StatusCode, body)
	}
	if body.Error != "" {
		t.Errorf("technical error should not leak, got %q", body.Error)
	}
}
