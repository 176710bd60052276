package models

import "time"

// UserBadge records that a user earned a badge. The composite unique index is the only
// guard against double awards.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge,priority:1" json:"user_id"`
	BadgeID  string    `gorm:"size:64;not null;uniqueIndex:idx_user_badges_user_badge,priority:2" json:"badge_id"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}
