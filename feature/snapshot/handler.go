package snapshot

import (
	"errors"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/logger"
	"dat-catalog/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for snapshots.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the snapshot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/snapshots")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleExport)
	group.Post("/:name/import", h.HandleImport)
	group.Delete("/:name", h.HandleDelete)
}

// HandleList lists stored snapshots.
// @Summary List Snapshots
// @Description Lists the catalog snapshots held in object storage.
// @Tags snapshots
// @Produce json
// @Success 200 {object} map[string]interface{} "Snapshots"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshots [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.Context())
	if err != nil {
		return h.fail(c, "Failed to list snapshots", err)
	}
	return c.JSON(fiber.Map{"count": len(list), "snapshots": list})
}

// HandleExport writes the catalog to a new snapshot.
// @Summary Export Snapshot
// @Description Serializes every bucket, flagged items included, and uploads it. Without name a timestamped name is used.
// @Tags snapshots
// @Produce json
// @Param name query string false "Snapshot name"
// @Success 201 {object} ExportResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshots [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	result, err := h.service.Export(c.Context(), c.Query("name"))
	if err != nil {
		return h.fail(c, "Snapshot export failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleImport restores a snapshot into the catalog.
// @Summary Import Snapshot
// @Description Loads a stored snapshot and re-applies its bucketing. With replace=true the catalog is emptied first.
// @Tags snapshots
// @Produce json
// @Param name path string true "Snapshot name"
// @Param replace query boolean false "Empty the catalog first"
// @Success 200 {object} RestoreResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /snapshots/{name}/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	result, err := h.service.Import(c.Context(), c.Params("name"), utils.ToBool(c.Query("replace")))
	if err != nil {
		return h.fail(c, "Snapshot import failed", err)
	}
	return c.JSON(result)
}

// HandleDelete removes a stored snapshot.
// @Summary Delete Snapshot
// @Tags snapshots
// @Param name path string true "Snapshot name"
// @Success 204
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /snapshots/{name} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("name")); err != nil {
		return h.fail(c, "Snapshot delete failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidSnapshot):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, engine.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	l.Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": msg, "details": err.Error()})
}
