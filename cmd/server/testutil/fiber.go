package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notely/cmd/server/handlers/handlerutil"
	"notely/cmd/server/handlers/httperr"
	"notely/internal/config"
	"notely/internal/logger"
	"notely/internal/services/profiles"
	util "notely/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// TestToken is the bearer token AsProfile stores for handlers that need one.
const TestToken = "test-token"

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{LogLevel: "debug", LogFormat: "text"}
	_, err := logger.Init(cfg)
	require.NoError(t, err)

	return fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
}

// CreateTestValidator creates the application validator
func CreateTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v, err := util.NewValidator()
	require.NoError(t, err)
	return v
}

// AsProfile stands in for the session middleware: it stores p and
// TestToken the way a resolved session would.
func AsProfile(p *profiles.Profile) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(handlerutil.LocalProfile, p)
		c.Locals(handlerutil.LocalToken, TestToken)
		return c.Next()
	}
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with Authorization header
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DecodeJSON reads the response body into out.
func DecodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
