package models

import "time"

// WarningLevel is a rung on the disciplinary ladder.
type WarningLevel string

const (
	// WarningLevelNone is the implicit level of a user with no active warning.
	WarningLevelNone WarningLevel = ""
	// WarningLevelFirst is the first formal warning.
	WarningLevelFirst WarningLevel = "warning_1"
	// WarningLevelSecond is the final warning before a ban.
	WarningLevelSecond WarningLevel = "warning_2"
	// WarningLevelTempBan bans the user until the warning expires.
	WarningLevelTempBan WarningLevel = "temp_ban"
	// WarningLevelPermBan bans the user indefinitely.
	WarningLevelPermBan WarningLevel = "perm_ban"
)

// IsBan reports whether the level carries a ban.
func (l WarningLevel) IsBan() bool {
	return l == WarningLevelTempBan || l == WarningLevelPermBan
}

// Warning is a disciplinary record issued by a moderator.
type Warning struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"not null;index:idx_user_warnings_user_active,priority:1" json:"user_id"`
	ModeratorID uint         `gorm:"not null" json:"moderator_id"`
	Level       WarningLevel `gorm:"type:varchar(16);not null" json:"level"`
	Reason      string       `gorm:"type:text;not null" json:"reason"`
	ReportID    *uint        `json:"report_id"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	IsActive    bool         `gorm:"not null;default:true;index:idx_user_warnings_user_active,priority:2" json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TableName pins the warnings table name.
func (Warning) TableName() string {
	return "user_warnings"
}
