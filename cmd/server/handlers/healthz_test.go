package handlers

import (
	"testing"

	"notely/cmd/server/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzWithoutDatabase(t *testing.T) {
	app := testutil.CreateTestApp(t)
	app.Get("/healthz", Healthz)

	resp, err := app.Test(testutil.CreateJSONRequest("GET", "/healthz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var got HealthResponse
	testutil.DecodeJSON(t, resp, &got)
	assert.Equal(t, "down", got.Status)
	assert.Equal(t, "database not initialized", got.Error)
}
