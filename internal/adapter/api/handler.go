package api

import (
	"log/slog"

	"llm-benchmark/internal/config"
	"llm-benchmark/internal/domain/entity"
	"llm-benchmark/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type BenchmarkHandler struct {
	orchestrator *usecase.Orchestrator
	catalog      []config.ProviderConfig
	recentLimit  int
	logger       *slog.Logger
}

func NewBenchmarkHandler(orch *usecase.Orchestrator, catalog []config.ProviderConfig, recentLimit int, logger *slog.Logger) *BenchmarkHandler {
	return &BenchmarkHandler{
		orchestrator: orch,
		catalog:      catalog,
		recentLimit:  recentLimit,
		logger:       logger,
	}
}

func (h *BenchmarkHandler) HandleBenchmark(c *fiber.Ctx) error {
	var req entity.BenchmarkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON format"})
	}

	res, err := h.orchestrator.RunBenchmark(c.UserContext(), req)
	if err != nil {
		return presentError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *BenchmarkHandler) HandleCompare(c *fiber.Ctx) error {
	var req entity.CompareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON format"})
	}

	results, err := h.orchestrator.CompareModels(c.UserContext(), req)
	if err != nil {
		return presentError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"prompt": req.Prompt, "results": results})
}

func (h *BenchmarkHandler) HandleUpdateFeedback(c *fiber.Ctx) error {
	var entries []entity.FeedbackEntry
	if err := c.BodyParser(&entries); err != nil || len(entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format. Expected a list of feedback entries.",
		})
	}

	n, err := h.orchestrator.ApplyFeedbackBatch(c.UserContext(), entries)
	if err != nil {
		return presentError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User feedback updated successfully",
		"updated": n,
	})
}

func (h *BenchmarkHandler) HandlePastResults(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.recentLimit)
	if limit <= 0 || limit > config.MaxRecentLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 1000"})
	}

	records, err := h.orchestrator.RecentResults(c.UserContext(), limit)
	if err != nil {
		return presentError(c, h.logger, err)
	}
	if len(records) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No past results found"})
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

func (h *BenchmarkHandler) HandleModels(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.catalog)
}
