package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/service"
	"github.com/noah-isme/gema-trust-api/internal/utils"
)

// TrustHandler serves the aggregated trust summary.
type TrustHandler struct {
	service service.TrustService
	logger  zerolog.Logger
}

// NewTrustHandler constructs a trust handler.
func NewTrustHandler(service service.TrustService, logger zerolog.Logger) *TrustHandler {
	return &TrustHandler{
		service: service,
		logger:  logger.With().Str("component", "trust_handler").Logger(),
	}
}

// Register binds trust summary routes.
func (h *TrustHandler) Register(router fiber.Router) {
	router.Get("/users/:id/trust", h.summary)
}

func (h *TrustHandler) summary(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	summary, err := h.service.Summary(requestContext(c), userID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load trust summary")
	}

	return utils.SendSuccess(c, "trust summary", summary)
}
