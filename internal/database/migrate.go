package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// TrustModels lists the tables owned by the trust engine.
func TrustModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserBadge{},
		&models.Warning{},
		&models.BanAppeal{},
		&models.ActionTrailEntry{},
		&models.Notification{},
	}
}

// ActivityModels lists the content tables read by the stats provider. They are owned by the
// content service and only migrated here for local development and tests.
func ActivityModels() []interface{} {
	return []interface{}{
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Follow{},
		&models.Community{},
		&models.CommunityMember{},
	}
}

// Migrate creates or updates the trust engine schema.
func Migrate(db *gorm.DB, includeActivity bool) error {
	targets := TrustModels()
	if includeActivity {
		targets = append(targets, ActivityModels()...)
	}
	return db.AutoMigrate(targets...)
}
