package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/service"
	"github.com/noah-isme/gema-trust-api/internal/utils"
)

// Export response headers. X-Export-Total counts every matching entry, X-Export-Rows the rows written.
const (
	headerExportRows      = "X-Export-Rows"
	headerExportTotal     = "X-Export-Total"
	headerExportTruncated = "X-Export-Truncated"
)

// TrailHandler exposes the action trail to moderators.
type TrailHandler struct {
	service service.ActionTrailService
	logger  zerolog.Logger
}

// NewTrailHandler constructs a trail handler.
func NewTrailHandler(service service.ActionTrailService, logger zerolog.Logger) *TrailHandler {
	return &TrailHandler{
		service: service,
		logger:  logger.With().Str("component", "trail_handler").Logger(),
	}
}

// Register binds trail routes.
func (h *TrailHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/actions", h.actions)
	router.Get("/entity-types", h.entityTypes)
	router.Get("/export", h.export)
}

func (h *TrailHandler) list(c *fiber.Ctx) error {
	query, err := parseTrailQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Query(requestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load action trail")
	}

	return utils.SendSuccess(c, "action trail", result)
}

func (h *TrailHandler) actions(c *fiber.Ctx) error {
	values, err := h.service.DistinctActions(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load trail actions")
	}
	return utils.SendSuccess(c, "trail actions", values)
}

func (h *TrailHandler) entityTypes(c *fiber.Ctx) error {
	values, err := h.service.DistinctEntityTypes(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load trail entity types")
	}
	return utils.SendSuccess(c, "trail entity types", values)
}

func (h *TrailHandler) export(c *fiber.Ctx) error {
	query, err := parseTrailQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	export, err := h.service.Export(requestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to export action trail")
	}

	filename := fmt.Sprintf("action-trail-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set(headerExportRows, strconv.Itoa(export.Rows))
	c.Set(headerExportTotal, strconv.FormatInt(export.Total, 10))
	c.Set(headerExportTruncated, strconv.FormatBool(export.Truncated))
	return c.Status(fiber.StatusOK).Send(export.Content)
}

func parseTrailQuery(c *fiber.Ctx) (dto.ActionTrailQuery, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.ActionTrailQuery{}, fmt.Errorf("invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return dto.ActionTrailQuery{}, fmt.Errorf("invalid page_size")
	}
	actor, err := parseQueryUint(c, "actor_user_id")
	if err != nil {
		return dto.ActionTrailQuery{}, fmt.Errorf("invalid actor_user_id")
	}
	entity, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return dto.ActionTrailQuery{}, fmt.Errorf("invalid entity_id")
	}
	from, err := parseQueryTime(c, "from", false)
	if err != nil {
		return dto.ActionTrailQuery{}, fmt.Errorf("invalid from")
	}
	to, err := parseQueryTime(c, "to", true)
	if err != nil {
		return dto.ActionTrailQuery{}, fmt.Errorf("invalid to")
	}

	return dto.ActionTrailQuery{
		Page:        page,
		PageSize:    pageSize,
		ActorUserID: actor,
		EntityID:    entity,
		Action:      c.Query("action"),
		EntityType:  c.Query("entity_type"),
		From:        from,
		To:          to,
	}, nil
}
