package api

import (
	"log/slog"

	"llm-benchmark/internal/domain/entity"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

// presentError maps the error taxonomy to status codes. Provider errors keep
// their literal text; a failed feedback batch also reports the entry index.
func presentError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	body := fiber.Map{"error": err.Error()}

	var batchErr *entity.FeedbackBatchError
	if errors.As(err, &batchErr) {
		body["index"] = batchErr.Index
		body["error"] = batchErr.Err.Error()
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, entity.ErrProvider):
		logger.WarnContext(c.UserContext(), "provider error", "error", err)
	default:
		logger.ErrorContext(c.UserContext(), "unexpected error", "error", err)
	}
	return c.Status(status).JSON(body)
}
