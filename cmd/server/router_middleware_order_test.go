package main

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// On auth routes the limiter runs before the session check.
func TestAuthMiddlewareOrder(t *testing.T) {
	app := newTestApp(t)
	limit := testConfig().SignInRatePerMin

	post := func(path string) int {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, path, nil), -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	for i := 0; i < limit; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, post("/api/v1/auth/sign-out"), "limiter passes, session rejects")
	}
	assert.Equal(t, fiber.StatusTooManyRequests, post("/api/v1/auth/sign-out"), "limiter rejects before the session runs")

	// Notes sit behind the session only.
	for i := 0; i < limit+2; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, post("/api/v1/notes"))
	}
}
