package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"llm-benchmark/internal/adapter/api"
	"llm-benchmark/internal/config"
	"llm-benchmark/internal/infra"
	"llm-benchmark/internal/ioc"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load(".env.dev")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := infra.NewLogger(os.Stdout, cfg.Env, infra.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := ioc.InitApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err.Error())
		os.Exit(1)
	}
	defer deps.Close()

	app := fiber.New(fiber.Config{
		AppName: "LLM Benchmark",
	})

	handler := api.NewBenchmarkHandler(deps.Orchestrator, deps.Catalog, cfg.RecentLimit, logger)
	api.SetupRouter(app, handler, deps.Registry, api.BuildInfo{Version: cfg.AppVersion, Env: cfg.Env})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("server shutdown failed", "error", err.Error())
		}
	}()

	logger.Info("LLM benchmark service running", "port", cfg.Port, "env", cfg.Env, "version", cfg.AppVersion)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err.Error())
	}
}
