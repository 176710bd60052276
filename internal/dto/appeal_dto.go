package dto

import (
	"time"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// CreateAppealRequest captures a banned user's appeal.
type CreateAppealRequest struct {
	Reason string `json:"reason" validate:"required,min=20,max=2000"`
}

// ResolveAppealRequest captures a moderator decision.
type ResolveAppealRequest struct {
	Status        string `json:"status" validate:"required,oneof=approved rejected"`
	AdminResponse string `json:"admin_response" validate:"max=2000"`
}

// AppealListRequest filters the moderator appeal queue.
type AppealListRequest struct {
	Status   string
	Page     int
	PageSize int
}

// AppealResponse serializes an appeal.
type AppealResponse struct {
	ID            uint                `json:"id"`
	UserID        uint                `json:"user_id"`
	Reason        string              `json:"reason"`
	Status        models.AppealStatus `json:"status"`
	AdminID       *uint               `json:"admin_id,omitempty"`
	AdminResponse *string             `json:"admin_response,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"`
}

// AppealListResponse wraps a page of appeals.
type AppealListResponse struct {
	Items      []AppealResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// AppealResolutionResponse reports who was affected by a decision.
type AppealResolutionResponse struct {
	AppealID       uint                `json:"appeal_id"`
	AffectedUserID uint                `json:"affected_user_id"`
	Status         models.AppealStatus `json:"status"`
}

// NewAppealResponse converts an appeal model.
func NewAppealResponse(appeal models.BanAppeal) AppealResponse {
	return AppealResponse{
		ID:            appeal.ID,
		UserID:        appeal.UserID,
		Reason:        appeal.Reason,
		Status:        appeal.Status,
		AdminID:       appeal.AdminID,
		AdminResponse: appeal.AdminResponse,
		CreatedAt:     appeal.CreatedAt,
		ResolvedAt:    appeal.ResolvedAt,
	}
}
