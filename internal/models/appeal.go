package models

import "time"

// AppealStatus tracks the lifecycle of a ban appeal.
type AppealStatus string

const (
	// AppealStatusPending awaits a moderator decision.
	AppealStatusPending AppealStatus = "pending"
	// AppealStatusApproved lifted the ban.
	AppealStatusApproved AppealStatus = "approved"
	// AppealStatusRejected left the ban in place.
	AppealStatusRejected AppealStatus = "rejected"
)

// BanAppeal is a banned user's request for review. The partial unique index allows one
// pending appeal per user.
type BanAppeal struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;index;uniqueIndex:idx_ban_appeals_one_pending,where:status = 'pending'" json:"user_id"`
	Reason        string       `gorm:"type:text;not null" json:"reason"`
	Status        AppealStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	AdminID       *uint        `json:"admin_id"`
	AdminResponse *string      `gorm:"type:text" json:"admin_response"`
	CreatedAt     time.Time    `json:"created_at"`
	ResolvedAt    *time.Time   `json:"resolved_at"`
}
