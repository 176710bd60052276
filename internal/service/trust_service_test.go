package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/repository"
)

func TestEngagementPolicyScore(t *testing.T) {
	policy := DefaultEngagementPolicy()

	require.Equal(t, 0, policy.Score(models.UserActivityStats{}))
	// 4*5 + 10*1 + 5*2 + 2*3 + 3*1 + 12*1 = 61 -> 6
	require.Equal(t, 6, policy.Score(models.UserActivityStats{
		PostCount:          4,
		TotalLikesReceived: 10,
		CommentCount:       5,
		FollowerCount:      2,
		FollowingCount:     3,
		OwnedCommunities:   []models.OwnedCommunity{{CommunityID: 1, MemberCount: 12}},
	}))
	require.Equal(t, 100, policy.Score(models.UserActivityStats{TotalLikesReceived: 50000}))
}

func TestTrustServiceSummary(t *testing.T) {
	db := newTestDB(t)
	store := repository.NewStore(db)
	tx := repository.NewTransactor(db)
	stats := &stubStats{stats: models.UserActivityStats{PostCount: 2, FollowerCount: 10}}

	badges := NewBadgeService(nil, stats, store.Badges, tx, nil, testLogger())
	escalation := NewEscalationService(store.Users, store.Warnings, tx, nil, newValidator(), 0, testLogger())
	svc := NewTrustService(store.Users, store.Warnings, badges, stats, DefaultEngagementPolicy(), tx, newValidator(), testLogger())

	moderator := createUser(t, db, "mod", models.UserRoleModerator)
	user := createUser(t, db, "member", models.UserRoleMember)
	ctx := context.Background()

	badges.CheckAllRules(ctx, user.ID)
	_, err := escalation.IssueWarning(ctx, moderator.ID, dto.IssueWarningRequest{UserID: user.ID, Reason: "off topic"})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.WarningLevelFirst, summary.CurrentLevel)
	require.Equal(t, models.WarningLevelSecond, summary.NextLevel)
	require.False(t, summary.Ban.IsBanned)
	require.Len(t, summary.Badges, 2)
	require.Equal(t, 4, summary.EngagementScore)

	stats.err = errors.New("stats offline")
	degraded, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, degraded.EngagementScore)

	_, err = svc.Summary(ctx, 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestTrustServiceUnban(t *testing.T) {
	db := newTestDB(t)
	store := repository.NewStore(db)
	svc := NewTrustService(store.Users, store.Warnings, nil, &stubStats{}, DefaultEngagementPolicy(), repository.NewTransactor(db), newValidator(), testLogger())

	moderator := createUser(t, db, "mod", models.UserRoleModerator)
	user := createUser(t, db, "member", models.UserRoleMember)
	ctx := context.Background()

	_, err := svc.Unban(ctx, user.ID, moderator.ID, dto.UnbanRequest{Reason: "mistaken ban"})
	require.ErrorIs(t, err, ErrUserNotBanned)

	require.NoError(t, store.Users.Ban(ctx, user.ID, nil, "spam"))

	_, err = svc.Unban(ctx, user.ID, user.ID, dto.UnbanRequest{Reason: "let me out"})
	require.ErrorIs(t, err, ErrSelfModeration)

	state, err := svc.Unban(ctx, user.ID, moderator.ID, dto.UnbanRequest{Reason: "mistaken ban"})
	require.NoError(t, err)
	require.False(t, state.IsBanned)
	require.Nil(t, state.BanReason)
	require.Equal(t, []string{models.TrailActionUnbanUser}, trailActions(t, db))
}
