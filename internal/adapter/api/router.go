package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BuildInfo struct {
	Version string
	Env     string
}

func SetupRouter(app *fiber.App, handler *BenchmarkHandler, registry *prometheus.Registry, info BuildInfo) {
	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": info.Version,
			"env":     info.Env,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app.Post("/benchmark", handler.HandleBenchmark)
	app.Post("/benchmark/compare", handler.HandleCompare)
	app.Post("/update-feedback", handler.HandleUpdateFeedback)
	app.Get("/past-results", handler.HandlePastResults)
	app.Get("/models", handler.HandleModels)
}
