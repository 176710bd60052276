package dto

import (
	"time"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// ActionTrailQuery defines filters for reading the action trail.
type ActionTrailQuery struct {
	Page        int
	PageSize    int
	ActorUserID uint
	EntityID    uint
	Action      string
	EntityType  string
	From        *time.Time
	To          *time.Time
}

// ActionTrailEntryResponse serializes a trail entry.
type ActionTrailEntryResponse struct {
	ID          uint                   `json:"id"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    uint                   `json:"entity_id"`
	ActorUserID uint                   `json:"actor_user_id"`
	Details     map[string]interface{} `json:"details"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ActionTrailListResponse wraps a page of trail entries with the total match count.
type ActionTrailListResponse struct {
	Items      []ActionTrailEntryResponse `json:"items"`
	Pagination PaginationMeta             `json:"pagination"`
}

// ActionTrailExport carries a rendered CSV export. Truncated is set when more entries matched
// than the export limit allows.
type ActionTrailExport struct {
	Content   []byte
	Rows      int
	Total     int64
	Truncated bool
}

// NewActionTrailEntryResponse converts a model into a trail DTO.
func NewActionTrailEntryResponse(entry models.ActionTrailEntry) ActionTrailEntryResponse {
	details := map[string]interface{}(entry.Details)
	if details == nil {
		details = map[string]interface{}{}
	}
	return ActionTrailEntryResponse{
		ID:          entry.ID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		ActorUserID: entry.ActorUserID,
		Details:     details,
		CreatedAt:   entry.CreatedAt,
	}
}
