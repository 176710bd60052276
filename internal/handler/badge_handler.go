package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/service"
	"github.com/noah-isme/gema-trust-api/internal/utils"
)

// BadgeHandler exposes the badge catalog and the rule engine entry points.
type BadgeHandler struct {
	service   service.BadgeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewBadgeHandler constructs a badge handler.
func NewBadgeHandler(service service.BadgeService, validator *validator.Validate, logger zerolog.Logger) *BadgeHandler {
	return &BadgeHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "badge_handler").Logger(),
	}
}

// Register binds the public badge routes.
func (h *BadgeHandler) Register(router fiber.Router) {
	router.Get("/badges", h.catalog)
	router.Get("/users/:id/badges", h.listForUser)
}

// RegisterInternal binds the routes content services call after trust-relevant actions.
func (h *BadgeHandler) RegisterInternal(router fiber.Router) {
	router.Post("/badges/events", h.onEvent)
	router.Post("/badges/backfill/:userId", h.backfill)
}

func (h *BadgeHandler) catalog(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "badge catalog", h.service.Catalog())
}

func (h *BadgeHandler) listForUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	badges, err := h.service.ListUserBadges(requestContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load badges")
	}

	return utils.SendSuccess(c, "user badges", badges)
}

func (h *BadgeHandler) onEvent(c *fiber.Ctx) error {
	var payload dto.BadgeEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	awarded, err := h.service.OnEvent(requestContext(c), payload.UserID, payload.Event)
	if err != nil {
		return respondError(c, h.logger, err, "failed to evaluate badges")
	}

	return utils.SendSuccess(c, "badges evaluated", dto.BadgeEventResponse{UserID: payload.UserID, Awarded: awarded})
}

func (h *BadgeHandler) backfill(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	awarded := h.service.CheckAllRules(requestContext(c), userID)
	return utils.SendSuccess(c, "badges evaluated", dto.BadgeEventResponse{UserID: userID, Awarded: awarded})
}
