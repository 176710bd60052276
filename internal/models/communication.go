package models

import "time"

// Notification is the persisted copy of a notice dispatched to a user.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	RelatedType string    `gorm:"size:64" json:"related_type"`
	RelatedID   string    `gorm:"size:64" json:"related_id"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
