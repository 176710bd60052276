package models

import (
	"time"

	"gorm.io/datatypes"
)

// Trail actions. Every trust-affecting mutation writes one of these.
const (
	TrailActionAwardBadge        = "award_badge"
	TrailActionIssueWarning      = "issue_warning"
	TrailActionDeactivateWarning = "deactivate_warning"
	TrailActionBanUser           = "ban_user"
	TrailActionUnbanUser         = "unban_user"
	TrailActionCreateAppeal      = "create_appeal"
	TrailActionApproveAppeal     = "approve_appeal"
	TrailActionRejectAppeal      = "reject_appeal"
)

// Trail entity types.
const (
	TrailEntityBadge   = "badge"
	TrailEntityWarning = "warning"
	TrailEntityUser    = "user"
	TrailEntityAppeal  = "appeal"
)

// ActionTrailEntry is an immutable record of a trust-affecting action. Badge awards point at the
// user_badges row and carry the badge id inside Details.
type ActionTrailEntry struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Action      string            `gorm:"size:64;not null;index" json:"action"`
	EntityType  string            `gorm:"size:64;not null;index" json:"entity_type"`
	EntityID    uint              `gorm:"not null" json:"entity_id"`
	ActorUserID uint              `gorm:"not null;index" json:"actor_user_id"`
	Details     datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

// TableName pins the trail table name.
func (ActionTrailEntry) TableName() string {
	return "action_trail"
}
