package catalog

import (
	"errors"

	engine "dat-catalog/core/catalog"
	"dat-catalog/core/items"
	"dat-catalog/core/logger"
	"dat-catalog/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/keys", h.HandleKeys)
	group.Get("/keys/:key", h.HandleBucket)
	group.Get("/stats", h.HandleStats)
	group.Get("/besthash", h.HandleBestHash)
	group.Post("/bucket", h.HandleBucketBy)
	group.Post("/items", h.HandleAddItems)
	group.Post("/clear", h.HandleClear)
	group.Post("/duplicates", h.HandleDuplicates)
}

// HandleKeys lists bucket keys.
// @Summary List Buckets
// @Description Lists every bucket key in natural order.
// @Tags catalog
// @Produce json
// @Param offset query int false "Keys to skip"
// @Param limit query int false "Maximum keys returned (0 for all)"
// @Success 200 {object} map[string]interface{} "Keys"
// @Router /catalog/keys [get]
func (h *Handler) HandleKeys(c *fiber.Ctx) error {
	keys := h.service.Keys(c.Context())
	total := len(keys)

	offset := min(max(utils.ToInt(c.Query("offset")), 0), total)
	keys = keys[offset:]
	if limit := utils.ToInt(c.Query("limit")); limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	return c.JSON(fiber.Map{"count": total, "offset": offset, "keys": keys})
}

// HandleBucket returns the items of one bucket.
// @Summary Get Bucket
// @Description Returns the items a writer would emit for a bucket, or every item with all=true.
// @Tags catalog
// @Produce json
// @Param key path string true "Bucket key"
// @Param all query boolean false "Include flagged and orphan items"
// @Success 200 {object} map[string]interface{} "Items"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /catalog/keys/{key} [get]
func (h *Handler) HandleBucket(c *fiber.Ctx) error {
	key := c.Params("key")
	list, err := h.service.Bucket(c.Context(), key, utils.ToBool(c.Query("all")))
	if err != nil {
		return h.fail(c, "Failed to read bucket", err)
	}
	return c.JSON(fiber.Map{"key": key, "items": list})
}

// HandleStats returns catalog statistics.
// @Summary Catalog Statistics
// @Description Returns the running statistics. With recalculate=true they are rebuilt from the store first.
// @Tags catalog
// @Produce json
// @Param recalculate query boolean false "Rebuild from the store"
// @Success 200 {object} StatsReport
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /catalog/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	report, err := h.service.Stats(c.Context(), utils.ToBool(c.Query("recalculate")))
	if err != nil {
		return h.fail(c, "Failed to recalculate statistics", err)
	}
	return c.JSON(report)
}

// HandleBestHash returns the best hash tier.
// @Summary Best Hash Tier
// @Description Returns the strongest hash carried by every rom, disk and media that is not a nodump.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]string
// @Router /catalog/besthash [get]
func (h *Handler) HandleBestHash(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"key": h.service.BestHash()})
}

// HandleBucketBy runs a bucketing pass.
// @Summary Bucket Catalog
// @Description Regroups the catalog by a key mode and merges duplicates. Without key the best hash tier is used.
// @Tags catalog
// @Produce json
// @Param key query string false "Key mode (machine, crc, md5, sha1, sha256, sha384, sha512, none)"
// @Param dedupe query string false "Merge mode (none, game, full)"
// @Param lower query boolean false "Lowercase hash keys"
// @Param norename query boolean false "Drop the source index from machine keys"
// @Success 200 {object} map[string]interface{} "Bucketing Result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/bucket [post]
func (h *Handler) HandleBucketBy(c *fiber.Ctx) error {
	req := BucketRequest{
		Key:                 c.Query("key"),
		Dedupe:              c.Query("dedupe"),
		NormalizeCase:       utils.ToBool(c.Query("lower")),
		IgnoreSourceContext: utils.ToBool(c.Query("norename")),
	}
	opts, err := h.service.Bucketize(c.Context(), req)
	if err != nil {
		return h.fail(c, "Bucketing failed", err)
	}
	return c.JSON(fiber.Map{
		"status":      "bucketed",
		"bucketed_by": opts.Key,
		"merged_by":   opts.Dedupe,
	})
}

// HandleAddItems adds items to the catalog.
// @Summary Add Items
// @Description Adds a JSON array of items under the keys the current bucketing assigns them.
// @Tags catalog
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{} "Added"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /catalog/items [post]
func (h *Handler) HandleAddItems(c *fiber.Ctx) error {
	var list []*items.Item
	if err := c.BodyParser(&list); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item list", "details": err.Error()})
	}
	if err := h.service.AddItems(c.Context(), list); err != nil {
		return h.fail(c, "Failed to add items", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": len(list)})
}

// HandleClear purges flagged items and empty buckets.
// @Summary Clear Catalog
// @Description Physically removes flagged items (marked=true) and buckets holding only blanks (empty=true).
// @Tags catalog
// @Produce json
// @Param marked query boolean false "Remove flagged items"
// @Param empty query boolean false "Remove empty buckets"
// @Success 200 {object} map[string]interface{} "Cleared"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/clear [post]
func (h *Handler) HandleClear(c *fiber.Ctx) error {
	marked, empty := utils.ToBool(c.Query("marked")), utils.ToBool(c.Query("empty"))
	if err := h.service.Clear(c.Context(), marked, empty); err != nil {
		return h.fail(c, "Clear failed", err)
	}
	return c.JSON(fiber.Map{"status": "cleared", "marked": marked, "empty": empty})
}

// HandleDuplicates flags the duplicates of an item.
// @Summary Flag Duplicates
// @Description Flags every live item equal to the posted item and returns them.
// @Tags catalog
// @Accept json
// @Produce json
// @Param sorted query boolean false "Skip rebucketing by the best hash tier"
// @Success 200 {object} map[string]interface{} "Duplicates"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /catalog/duplicates [post]
func (h *Handler) HandleDuplicates(c *fiber.Ctx) error {
	var item items.Item
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item", "details": err.Error()})
	}
	dupes, err := h.service.Duplicates(c.Context(), &item, utils.ToBool(c.Query("sorted")))
	if err != nil {
		return h.fail(c, "Duplicate lookup failed", err)
	}
	return c.JSON(fiber.Map{"count": len(dupes), "items": dupes})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, items.ErrMalformedItem), errors.Is(err, ErrInvalidRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, engine.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	l.Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": msg, "details": err.Error()})
}
