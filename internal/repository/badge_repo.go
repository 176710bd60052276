package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// BadgeRepository persists earned badges.
type BadgeRepository interface {
	// AwardIfAbsent inserts the award unless the (user, badge) pair exists. It reports whether
	// this call created the row.
	AwardIfAbsent(ctx context.Context, award *models.UserBadge) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.UserBadge, error)
	AwardedIDs(ctx context.Context, userID uint) ([]string, error)
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository constructs the badge repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) AwardIfAbsent(ctx context.Context, award *models.UserBadge) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Order("id ASC").
		Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) AwardedIDs(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
