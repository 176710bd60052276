package models

import "time"

// Post is the content service's post row, read for badge statistics.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:255" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// PostLike is a like on a post.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:1" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:2" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a comment on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow links a follower to the user they follow.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Community is a user-created community.
type Community struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CommunityMember is a membership row.
type CommunityMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"not null;uniqueIndex:idx_community_members_pair,priority:1" json:"community_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_community_members_pair,priority:2" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnedCommunity summarises a community the user owns.
type OwnedCommunity struct {
	CommunityID uint  `json:"community_id"`
	MemberCount int64 `json:"member_count"`
}

// UserActivityStats is the aggregate activity snapshot badge rules are evaluated against.
type UserActivityStats struct {
	UserID             uint             `json:"user_id"`
	PostCount          int64            `json:"post_count"`
	TotalLikesReceived int64            `json:"total_likes_received"`
	CommentCount       int64            `json:"comment_count"`
	FollowerCount      int64            `json:"follower_count"`
	FollowingCount     int64            `json:"following_count"`
	OwnedCommunities   []OwnedCommunity `json:"owned_communities"`
}

// MaxCommunityMembers returns the member count of the user's largest owned community.
func (s UserActivityStats) MaxCommunityMembers() int64 {
	var max int64
	for _, community := range s.OwnedCommunities {
		if community.MemberCount > max {
			max = community.MemberCount
		}
	}
	return max
}

// TotalCommunityMembers sums members across every owned community.
func (s UserActivityStats) TotalCommunityMembers() int64 {
	var total int64
	for _, community := range s.OwnedCommunities {
		total += community.MemberCount
	}
	return total
}
