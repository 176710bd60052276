package dto

import (
	"time"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// IssueWarningRequest captures a moderator's warning payload.
type IssueWarningRequest struct {
	UserID   uint   `json:"user_id" validate:"required"`
	Reason   string `json:"reason" validate:"required,min=3,max=1000"`
	ReportID *uint  `json:"report_id" validate:"omitempty,min=1"`
}

// IssueWarningResponse reports the escalation outcome.
type IssueWarningResponse struct {
	WarningID uint                `json:"warning_id"`
	UserID    uint                `json:"user_id"`
	Level     models.WarningLevel `json:"level"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	IsBanned  bool                `json:"is_banned"`
}

// NextLevelResponse previews the next escalation step.
type NextLevelResponse struct {
	UserID       uint                `json:"user_id"`
	CurrentLevel models.WarningLevel `json:"current_level"`
	NextLevel    models.WarningLevel `json:"next_level"`
}

// WarningResponse serializes a warning.
type WarningResponse struct {
	ID          uint                `json:"id"`
	UserID      uint                `json:"user_id"`
	ModeratorID uint                `json:"moderator_id"`
	Level       models.WarningLevel `json:"level"`
	Reason      string              `json:"reason"`
	ReportID    *uint               `json:"report_id,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewWarningResponse converts a warning model.
func NewWarningResponse(warning models.Warning) WarningResponse {
	return WarningResponse{
		ID:          warning.ID,
		UserID:      warning.UserID,
		ModeratorID: warning.ModeratorID,
		Level:       warning.Level,
		Reason:      warning.Reason,
		ReportID:    warning.ReportID,
		ExpiresAt:   warning.ExpiresAt,
		IsActive:    warning.IsActive,
		CreatedAt:   warning.CreatedAt,
	}
}

// NewWarningResponseSlice converts a slice of warnings.
func NewWarningResponseSlice(warnings []models.Warning) []WarningResponse {
	responses := make([]WarningResponse, 0, len(warnings))
	for _, warning := range warnings {
		responses = append(responses, NewWarningResponse(warning))
	}
	return responses
}
