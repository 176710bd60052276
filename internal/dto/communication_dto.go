package dto

import (
	"time"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// NotificationResponse represents notification data returned to clients and brokers.
type NotificationResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	RelatedType string    `json:"related_type"`
	RelatedID   string    `json:"related_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          model.ID,
		UserID:      model.UserID,
		Title:       model.Title,
		Body:        model.Body,
		RelatedType: model.RelatedType,
		RelatedID:   model.RelatedID,
		Read:        model.Read,
		CreatedAt:   model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
