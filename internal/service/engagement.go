package service

import (
	"math"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// EngagementPolicy weights each activity counter in the engagement score. The weights are a
// product decision and are loaded from configuration.
type EngagementPolicy struct {
	Posts            float64
	LikesReceived    float64
	Comments         float64
	Followers        float64
	Following        float64
	CommunityMembers float64
}

// DefaultEngagementPolicy mirrors the configuration defaults.
func DefaultEngagementPolicy() EngagementPolicy {
	return EngagementPolicy{
		Posts:            5,
		LikesReceived:    1,
		Comments:         2,
		Followers:        3,
		Following:        1,
		CommunityMembers: 1,
	}
}

// Score folds the stats into a 0-100 engagement score: the weighted sum divided by ten, capped.
func (p EngagementPolicy) Score(stats models.UserActivityStats) int {
	weighted := p.Posts*float64(stats.PostCount) +
		p.LikesReceived*float64(stats.TotalLikesReceived) +
		p.Comments*float64(stats.CommentCount) +
		p.Followers*float64(stats.FollowerCount) +
		p.Following*float64(stats.FollowingCount) +
		p.CommunityMembers*float64(stats.TotalCommunityMembers())

	score := math.Floor(weighted / 10)
	switch {
	case score < 0 || math.IsNaN(score):
		return 0
	case score > 100:
		return 100
	default:
		return int(score)
	}
}
