package rest

import (
	"github.com/AzielCF/az-devocional/pkg/msgworker"
	"github.com/gofiber/fiber/v2"
)

type StatsProvider interface {
	GetStats() msgworker.PoolStats
}

// WorkerPoolStats devuelve un handler con las métricas del pool; 503 si no hay pool
func WorkerPoolStats(pool StatsProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if pool == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Message worker pool not initialized",
			})
		}
		return c.JSON(pool.GetStats())
	}
}
