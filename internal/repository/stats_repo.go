package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// StatsRepository aggregates a user's activity from the content tables.
type StatsRepository interface {
	UserStats(ctx context.Context, userID uint) (models.UserActivityStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository constructs the stats repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) UserStats(ctx context.Context, userID uint) (models.UserActivityStats, error) {
	db := r.db.WithContext(ctx)
	stats := models.UserActivityStats{UserID: userID}

	if err := db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&stats.PostCount).Error; err != nil {
		return models.UserActivityStats{}, err
	}

	if err := db.Model(&models.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.user_id = ?", userID).
		Count(&stats.TotalLikesReceived).Error; err != nil {
		return models.UserActivityStats{}, err
	}

	if err := db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&stats.CommentCount).Error; err != nil {
		return models.UserActivityStats{}, err
	}

	if err := db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&stats.FollowerCount).Error; err != nil {
		return models.UserActivityStats{}, err
	}

	if err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&stats.FollowingCount).Error; err != nil {
		return models.UserActivityStats{}, err
	}

	var owned []models.OwnedCommunity
	if err := db.Model(&models.Community{}).
		Select("communities.id AS community_id, COUNT(community_members.id) AS member_count").
		Joins("LEFT JOIN community_members ON community_members.community_id = communities.id").
		Where("communities.owner_id = ?", userID).
		Group("communities.id").
		Order("communities.id").
		Scan(&owned).Error; err != nil {
		return models.UserActivityStats{}, err
	}
	stats.OwnedCommunities = owned

	return stats, nil
}
