package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/service"
	"github.com/noah-isme/gema-trust-api/internal/utils"
)

// ModerationHandler serves the warning and ban routes used by moderators.
type ModerationHandler struct {
	escalation service.EscalationService
	trust      service.TrustService
	logger     zerolog.Logger
}

// NewModerationHandler constructs a moderation handler.
func NewModerationHandler(escalation service.EscalationService, trust service.TrustService, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		escalation: escalation,
		trust:      trust,
		logger:     logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// Register binds moderation routes. The router is expected to be guarded by a moderator role check.
func (h *ModerationHandler) Register(router fiber.Router) {
	router.Post("/warnings", h.issueWarning)
	router.Post("/warnings/:id/deactivate", h.deactivateWarning)
	router.Get("/users/:id/warnings", h.listWarnings)
	router.Get("/users/:id/next-level", h.nextLevel)
	router.Post("/users/:id/unban", h.unban)
}

func (h *ModerationHandler) issueWarning(c *fiber.Ctx) error {
	moderatorID := userIDFromContext(c)
	if moderatorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.IssueWarningRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.escalation.IssueWarning(requestContext(c), moderatorID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to issue warning")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "warning issued", result)
}

func (h *ModerationHandler) deactivateWarning(c *fiber.Ctx) error {
	moderatorID := userIDFromContext(c)
	if moderatorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	warningID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid warning id")
	}

	warning, err := h.escalation.Deactivate(requestContext(c), warningID, moderatorID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to deactivate warning")
	}

	return utils.SendSuccess(c, "warning deactivated", warning)
}

func (h *ModerationHandler) listWarnings(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		activeOnly, err = strconv.ParseBool(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid active flag")
		}
	}

	warnings, err := h.escalation.ListForUser(requestContext(c), userID, activeOnly)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load warnings")
	}

	return utils.SendSuccess(c, "warnings", warnings)
}

func (h *ModerationHandler) nextLevel(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	next, err := h.escalation.NextLevel(requestContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute next level")
	}

	return utils.SendSuccess(c, "next escalation level", next)
}

func (h *ModerationHandler) unban(c *fiber.Ctx) error {
	moderatorID := userIDFromContext(c)
	if moderatorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.UnbanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	state, err := h.trust.Unban(requestContext(c), userID, moderatorID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to unban user")
	}

	return utils.SendSuccess(c, "user unbanned", state)
}
