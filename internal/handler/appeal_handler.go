package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/service"
	"github.com/noah-isme/gema-trust-api/internal/utils"
)

// AppealHandler serves ban appeal routes for banned users and moderators.
type AppealHandler struct {
	service service.AppealService
	logger  zerolog.Logger
}

// NewAppealHandler constructs an appeal handler.
func NewAppealHandler(service service.AppealService, logger zerolog.Logger) *AppealHandler {
	return &AppealHandler{
		service: service,
		logger:  logger.With().Str("component", "appeal_handler").Logger(),
	}
}

// Register binds the self-service appeal routes.
func (h *AppealHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	submit := append(append([]fiber.Handler{}, submitGuards...), h.create)
	router.Post("", submit...)
	router.Get("/me", h.mine)
}

// RegisterModeration binds the moderator appeal queue routes.
func (h *AppealHandler) RegisterModeration(router fiber.Router) {
	router.Get("/appeals", h.list)
	router.Get("/appeals/pending", h.pending)
	router.Post("/appeals/:id/resolve", h.resolve)
}

func (h *AppealHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.CreateAppealRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	appeal, err := h.service.Create(requestContext(c), userID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit appeal")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "appeal submitted", appeal)
}

func (h *AppealHandler) mine(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	appeal, err := h.service.GetForUser(requestContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load appeal")
	}

	return utils.SendSuccess(c, "appeal", appeal)
}

func (h *AppealHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	appeals, err := h.service.List(requestContext(c), dto.AppealListRequest{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list appeals")
	}

	return utils.SendSuccess(c, "appeals", appeals)
}

func (h *AppealHandler) pending(c *fiber.Ctx) error {
	appeals, err := h.service.ListPending(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list pending appeals")
	}

	return utils.SendSuccess(c, "pending appeals", appeals)
}

func (h *AppealHandler) resolve(c *fiber.Ctx) error {
	adminID := userIDFromContext(c)
	if adminID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	appealID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid appeal id")
	}

	var payload dto.ResolveAppealRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Resolve(requestContext(c), appealID, adminID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to resolve appeal")
	}

	return utils.SendSuccess(c, "appeal resolved", result)
}
