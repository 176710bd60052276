package dto

import (
	"time"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// UnbanRequest captures a moderator's manual unban.
type UnbanRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// BanStateResponse reports a user's ban fields.
type BanStateResponse struct {
	UserID      uint       `json:"user_id"`
	IsBanned    bool       `json:"is_banned"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	BanReason   *string    `json:"ban_reason,omitempty"`
}

// TrustSummaryResponse aggregates a user's standing.
type TrustSummaryResponse struct {
	UserID          uint                `json:"user_id"`
	Ban             BanStateResponse    `json:"ban"`
	CurrentLevel    models.WarningLevel `json:"current_level"`
	NextLevel       models.WarningLevel `json:"next_level"`
	Badges          []UserBadgeResponse `json:"badges"`
	EngagementScore int                 `json:"engagement_score"`
}

// NewBanStateResponse converts user ban fields.
func NewBanStateResponse(user models.User) BanStateResponse {
	return BanStateResponse{
		UserID:      user.ID,
		IsBanned:    user.IsBanned,
		BannedUntil: user.BannedUntil,
		BanReason:   user.BanReason,
	}
}
