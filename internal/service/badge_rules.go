package service

import (
	"sort"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// BadgeEvent names an activity that can unlock badges.
type BadgeEvent string

// Trigger events. The set is closed; anything else is rejected.
const (
	EventPostCreated           BadgeEvent = "post_created"
	EventLikeReceived          BadgeEvent = "like_received"
	EventCommentCreated        BadgeEvent = "comment_created"
	EventUserFollowed          BadgeEvent = "user_followed"
	EventCommunityCreated      BadgeEvent = "community_created"
	EventCommunityMemberJoined BadgeEvent = "community_member_joined"
)

// ParseBadgeEvent validates an event name against the trigger set.
func ParseBadgeEvent(name string) (BadgeEvent, bool) {
	switch event := BadgeEvent(name); event {
	case EventPostCreated, EventLikeReceived, EventCommentCreated,
		EventUserFollowed, EventCommunityCreated, EventCommunityMemberJoined:
		return event, true
	default:
		return "", false
	}
}

// BadgeRule is a static achievement definition. Condition must be a pure function of the stats.
type BadgeRule struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Event       BadgeEvent
	Condition   func(stats models.UserActivityStats) bool
}

// BadgeRegistry indexes rules by trigger event.
type BadgeRegistry struct {
	rules   []BadgeRule
	byID    map[string]BadgeRule
	byEvent map[BadgeEvent][]BadgeRule
}

// NewBadgeRegistry indexes the supplied rules. Later duplicates of an id are ignored.
func NewBadgeRegistry(rules []BadgeRule) *BadgeRegistry {
	registry := &BadgeRegistry{
		byID:    make(map[string]BadgeRule, len(rules)),
		byEvent: make(map[BadgeEvent][]BadgeRule),
	}
	for _, rule := range rules {
		if rule.ID == "" || rule.Condition == nil {
			continue
		}
		if _, exists := registry.byID[rule.ID]; exists {
			continue
		}
		registry.rules = append(registry.rules, rule)
		registry.byID[rule.ID] = rule
		registry.byEvent[rule.Event] = append(registry.byEvent[rule.Event], rule)
	}
	return registry
}

// ForEvent returns the rules triggered by an event.
func (r *BadgeRegistry) ForEvent(event BadgeEvent) []BadgeRule {
	return r.byEvent[event]
}

// All returns every registered rule in registration order.
func (r *BadgeRegistry) All() []BadgeRule {
	return r.rules
}

// Lookup finds a rule by id.
func (r *BadgeRegistry) Lookup(id string) (BadgeRule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// IDs returns the sorted rule ids.
func (r *BadgeRegistry) IDs() []string {
	ids := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		ids = append(ids, rule.ID)
	}
	sort.Strings(ids)
	return ids
}

// DefaultBadgeRules is the built-in achievement catalog.
func DefaultBadgeRules() []BadgeRule {
	return []BadgeRule{
		{
			ID: "first_post", Name: "First Post", Icon: "✍️",
			Description: "Published your first post.",
			Event:       EventPostCreated,
			Condition:   func(s models.UserActivityStats) bool { return s.PostCount >= 1 },
		},
		{
			ID: "prolific_writer", Name: "Prolific Writer", Icon: "📚",
			Description: "Published 10 posts.",
			Event:       EventPostCreated,
			Condition:   func(s models.UserActivityStats) bool { return s.PostCount >= 10 },
		},
		{
			ID: "content_machine", Name: "Content Machine", Icon: "🏭",
			Description: "Published 50 posts.",
			Event:       EventPostCreated,
			Condition:   func(s models.UserActivityStats) bool { return s.PostCount >= 50 },
		},
		{
			ID: "first_like", Name: "First Like", Icon: "👍",
			Description: "Received your first like.",
			Event:       EventLikeReceived,
			Condition:   func(s models.UserActivityStats) bool { return s.TotalLikesReceived >= 1 },
		},
		{
			ID: "popular", Name: "Popular", Icon: "🔥",
			Description: "Received 100 likes.",
			Event:       EventLikeReceived,
			Condition:   func(s models.UserActivityStats) bool { return s.TotalLikesReceived >= 100 },
		},
		{
			ID: "beloved", Name: "Beloved", Icon: "💖",
			Description: "Received 1000 likes.",
			Event:       EventLikeReceived,
			Condition:   func(s models.UserActivityStats) bool { return s.TotalLikesReceived >= 1000 },
		},
		{
			ID: "first_comment", Name: "First Comment", Icon: "💬",
			Description: "Left your first comment.",
			Event:       EventCommentCreated,
			Condition:   func(s models.UserActivityStats) bool { return s.CommentCount >= 1 },
		},
		{
			ID: "conversationalist", Name: "Conversationalist", Icon: "🗣️",
			Description: "Left 50 comments.",
			Event:       EventCommentCreated,
			Condition:   func(s models.UserActivityStats) bool { return s.CommentCount >= 50 },
		},
		{
			ID: "first_follower", Name: "First Follower", Icon: "🤝",
			Description: "Gained your first follower.",
			Event:       EventUserFollowed,
			Condition:   func(s models.UserActivityStats) bool { return s.FollowerCount >= 1 },
		},
		{
			ID: "influencer", Name: "Influencer", Icon: "⭐",
			Description: "Gained 100 followers.",
			Event:       EventUserFollowed,
			Condition:   func(s models.UserActivityStats) bool { return s.FollowerCount >= 100 },
		},
		{
			ID: "social_butterfly", Name: "Social Butterfly", Icon: "🦋",
			Description: "Followed 50 people.",
			Event:       EventUserFollowed,
			Condition:   func(s models.UserActivityStats) bool { return s.FollowingCount >= 50 },
		},
		{
			ID: "community_founder", Name: "Community Founder", Icon: "🏛️",
			Description: "Created a community.",
			Event:       EventCommunityCreated,
			Condition:   func(s models.UserActivityStats) bool { return len(s.OwnedCommunities) >= 1 },
		},
		{
			ID: "community_builder", Name: "Community Builder", Icon: "🧱",
			Description: "Grew a community you own to 10 members.",
			Event:       EventCommunityMemberJoined,
			Condition:   func(s models.UserActivityStats) bool { return s.MaxCommunityMembers() >= 10 },
		},
		{
			ID: "thriving_community", Name: "Thriving Community", Icon: "🌳",
			Description: "Grew a community you own to 100 members.",
			Event:       EventCommunityMemberJoined,
			Condition:   func(s models.UserActivityStats) bool { return s.MaxCommunityMembers() >= 100 },
		},
	}
}
