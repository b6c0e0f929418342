package integrity

import (
	"dat-catalog/core/logger"
	"dat-catalog/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/statistics", h.HandleStatisticsCheck)
	group.Get("/keys", h.HandleKeysCheck)
	group.Get("/schema", h.HandleSchemaCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs every integrity check (Statistics, Keys, Schema). The statistics check walks the whole catalog.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]any)

	if stats, err := h.service.CheckStatistics(ctx); err != nil {
		report["statistics"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["statistics"] = stats
	}

	if empty, err := h.service.CheckEmptyKeys(ctx); err != nil {
		report["keys"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["keys"] = fiber.Map{"status": "ok", "empty": empty}
	}

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	return c.JSON(report)
}

// HandleStatisticsCheck recounts the catalog.
// @Summary Check Statistics
// @Description Rebuilds the statistics from the stored items and reports whether the running counters had diverged.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.StatisticsReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/statistics [get]
func (h *Handler) HandleStatisticsCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckStatistics(c.Context())
	if err != nil {
		l.Error("Statistics check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleKeysCheck checks and optionally drops empty buckets.
// @Summary Check Empty Buckets
// @Description Lists buckets holding nothing but blanks. Optionally removes them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Remove empty buckets"
// @Success 200 {object} map[string]interface{} "Keys Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/keys [get]
func (h *Handler) HandleKeysCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	empty, err := h.service.CheckEmptyKeys(c.Context())
	if err != nil {
		l.Error("Keys check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(empty) > 0 {
		l.Warn("Empty buckets detected", zap.Int("count", len(empty)))

		if fix {
			if err := h.service.FixEmptyKeys(c.Context()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to drop empty buckets",
					"details": err.Error(),
					"empty":   empty,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  empty,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"empty":  empty,
	})
}

// HandleSchemaCheck verifies the bucket store tables.
// @Summary Check Store Schema
// @Description Verifies that the SQL bucket store tables carry the expected columns.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport
// @Failure 503 {object} map[string]string "Service Unavailable"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Warn("Schema check unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
