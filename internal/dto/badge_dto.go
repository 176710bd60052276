package dto

import (
	"time"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// BadgeEventRequest is posted by content handlers after a trust-relevant action.
type BadgeEventRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Event  string `json:"event" validate:"required"`
}

// BadgeEventResponse lists the badges newly awarded by an event.
type BadgeEventResponse struct {
	UserID  uint     `json:"user_id"`
	Awarded []string `json:"awarded"`
}

// BadgeRuleResponse describes a badge in the catalog.
type BadgeRuleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Event       string `json:"event"`
}

// UserBadgeResponse describes a badge a user has earned.
type UserBadgeResponse struct {
	BadgeID     string    `json:"badge_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// NewUserBadgeResponse merges an award row with its catalog entry.
func NewUserBadgeResponse(award models.UserBadge, rule BadgeRuleResponse) UserBadgeResponse {
	return UserBadgeResponse{
		BadgeID:     award.BadgeID,
		Name:        rule.Name,
		Description: rule.Description,
		Icon:        rule.Icon,
		EarnedAt:    award.EarnedAt,
	}
}
