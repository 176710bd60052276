package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

func TestBadgeRegistryIndexesByEvent(t *testing.T) {
	always := func(models.UserActivityStats) bool { return true }
	registry := NewBadgeRegistry([]BadgeRule{
		{ID: "b", Event: EventPostCreated, Condition: always},
		{ID: "a", Event: EventLikeReceived, Condition: always},
		{ID: "b", Event: EventLikeReceived, Condition: always},
		{ID: "no_condition", Event: EventPostCreated},
	})

	require.Equal(t, []string{"a", "b"}, registry.IDs())
	require.Len(t, registry.ForEvent(EventPostCreated), 1)
	require.Len(t, registry.ForEvent(EventLikeReceived), 1)
	require.Empty(t, registry.ForEvent(EventUserFollowed))

	_, ok := registry.Lookup("no_condition")
	require.False(t, ok)
}

func TestDefaultBadgeRulesThresholds(t *testing.T) {
	registry := NewBadgeRegistry(DefaultBadgeRules())
	require.Len(t, registry.IDs(), 14)

	cases := []struct {
		id    string
		below models.UserActivityStats
		at    models.UserActivityStats
	}{
		{"prolific_writer", models.UserActivityStats{PostCount: 9}, models.UserActivityStats{PostCount: 10}},
		{"popular", models.UserActivityStats{TotalLikesReceived: 99}, models.UserActivityStats{TotalLikesReceived: 100}},
		{"conversationalist", models.UserActivityStats{CommentCount: 49}, models.UserActivityStats{CommentCount: 50}},
		{"social_butterfly", models.UserActivityStats{FollowingCount: 49}, models.UserActivityStats{FollowingCount: 50}},
		{"community_founder", models.UserActivityStats{}, models.UserActivityStats{OwnedCommunities: []models.OwnedCommunity{{CommunityID: 1}}}},
		{
			"thriving_community",
			models.UserActivityStats{OwnedCommunities: []models.OwnedCommunity{{CommunityID: 1, MemberCount: 60}, {CommunityID: 2, MemberCount: 60}}},
			models.UserActivityStats{OwnedCommunities: []models.OwnedCommunity{{CommunityID: 1, MemberCount: 100}}},
		},
	}

	for _, tc := range cases {
		rule, ok := registry.Lookup(tc.id)
		require.True(t, ok, tc.id)
		require.False(t, rule.Condition(tc.below), tc.id)
		require.True(t, rule.Condition(tc.at), tc.id)
	}
}
