package rest

import (
	"context"
	"time"

	"github.com/AzielCF/az-devocional/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// HealthCheck es una dependencia que se puede pinguear
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Health struct {
	Checks  []HealthCheck
	Timeout time.Duration
}

func InitRestHealth(app fiber.Router, checks ...HealthCheck) Health {
	handler := Health{Checks: checks, Timeout: 3 * time.Second}
	app.Get("/health", handler.GetStatus)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.Timeout)
	defer cancel()

	results := make(map[string]string, len(h.Checks))
	healthy := true
	for _, check := range h.Checks {
		if err := check.Ping(ctx); err != nil {
			results[check.Name] = err.Error()
			healthy = false
			continue
		}
		results[check.Name] = "ok"
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  fiber.StatusServiceUnavailable,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "One or more dependencies are unhealthy",
			Results: results,
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: results,
	})
}
