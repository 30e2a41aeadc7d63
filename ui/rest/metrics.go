package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRestMetrics(app fiber.Router) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
