package handlers

import (
	"context"
	"time"

	"notely/internal/clients/mongo"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const HealthzTimeout = 5 * time.Second

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database,omitempty" example:"notely"`
	LatencyMS int64  `json:"latency_ms" example:"2"`
	Error     string `json:"error,omitempty"`
}

// Healthz reports whether the API can reach the primary of its database.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func Healthz(c *fiber.Ctx) error {
	db := mongo.DB()
	if db == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "down",
			Error:  "database not initialized",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
	defer cancel()

	start := time.Now()
	err := db.Client().Ping(ctx, readpref.Primary())
	resp := HealthResponse{
		Status:    "ok",
		Database:  db.Name(),
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		resp.Status, resp.Error = "down", err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
