package models

import "time"

// User roles recognised by the trust engine.
const (
	UserRoleMember    = "member"
	UserRoleModerator = "moderator"
	UserRoleAdmin     = "admin"
)

// User holds the account fields the trust engine reads and the ban fields it owns.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Role        string     `gorm:"size:32;not null;default:'member'" json:"role"`
	IsBanned    bool       `gorm:"not null;default:false" json:"is_banned"`
	BannedUntil *time.Time `json:"banned_until"`
	BanReason   *string    `gorm:"type:text" json:"ban_reason"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsModerator reports whether the user may run moderation actions.
func (u User) IsModerator() bool {
	return u.Role == UserRoleModerator || u.Role == UserRoleAdmin
}
