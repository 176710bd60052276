package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/observability"
	"github.com/noah-isme/gema-trust-api/internal/repository"
)

// StatsProvider returns a fresh activity snapshot for a user.
type StatsProvider interface {
	UserStats(ctx context.Context, userID uint) (models.UserActivityStats, error)
}

// BadgeService evaluates achievement rules and awards badges at most once per user.
//
// Evaluation never fails the caller's action: storage and notification problems are logged and
// surface as an empty or partial award list.
type BadgeService interface {
	OnEvent(ctx context.Context, userID uint, event string) ([]string, error)
	CheckAllRules(ctx context.Context, userID uint) []string
	ListUserBadges(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error)
	Catalog() []dto.BadgeRuleResponse
}

type badgeService struct {
	registry *BadgeRegistry
	stats    StatsProvider
	badges   repository.BadgeRepository
	tx       repository.Transactor
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBadgeService constructs the rule engine. The notifier is optional.
func NewBadgeService(registry *BadgeRegistry, stats StatsProvider, badges repository.BadgeRepository, transactor repository.Transactor, notifier Notifier, logger zerolog.Logger) BadgeService {
	if registry == nil {
		registry = NewBadgeRegistry(DefaultBadgeRules())
	}
	return &badgeService{
		registry: registry,
		stats:    stats,
		badges:   badges,
		tx:       transactor,
		notifier: notifier,
		logger:   logger.With().Str("component", "badge_service").Logger(),
		now:      time.Now,
	}
}

func (s *badgeService) OnEvent(ctx context.Context, userID uint, eventName string) ([]string, error) {
	event, ok := ParseBadgeEvent(strings.TrimSpace(eventName))
	if !ok {
		return nil, ErrUnknownBadgeEvent
	}
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	return s.evaluate(ctx, userID, s.registry.ForEvent(event), string(event)), nil
}

func (s *badgeService) CheckAllRules(ctx context.Context, userID uint) []string {
	if userID == 0 {
		return []string{}
	}
	return s.evaluate(ctx, userID, s.registry.All(), "backfill")
}

func (s *badgeService) evaluate(ctx context.Context, userID uint, rules []BadgeRule, trigger string) []string {
	awarded := []string{}
	if len(rules) == 0 {
		return awarded
	}

	logger := s.logger.With().Uint("user_id", userID).Str("trigger", trigger).Logger()

	earned, err := s.badges.AwardedIDs(ctx, userID)
	if err != nil {
		observability.BadgeFailures().WithLabelValues("lookup").Inc()
		logger.Warn().Err(err).Msg("skipping badge evaluation: awarded badges unavailable")
		return awarded
	}

	owned := make(map[string]struct{}, len(earned))
	for _, id := range earned {
		owned[id] = struct{}{}
	}

	pending := make([]BadgeRule, 0, len(rules))
	for _, rule := range rules {
		if _, ok := owned[rule.ID]; !ok {
			pending = append(pending, rule)
		}
	}
	if len(pending) == 0 {
		return awarded
	}

	stats, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		observability.BadgeFailures().WithLabelValues("stats").Inc()
		logger.Warn().Err(err).Msg("skipping badge evaluation: stats unavailable")
		return awarded
	}

	for _, rule := range pending {
		if !s.matches(logger, rule, stats) {
			continue
		}

		created, err := s.award(ctx, userID, rule, trigger)
		if err != nil {
			observability.BadgeFailures().WithLabelValues("award").Inc()
			logger.Warn().Err(err).Str("badge_id", rule.ID).Msg("failed to award badge")
			continue
		}
		if !created {
			continue
		}

		awarded = append(awarded, rule.ID)
		observability.BadgesAwarded().WithLabelValues(rule.ID).Inc()
		logger.Info().Str("badge_id", rule.ID).Msg("badge awarded")
		s.notify(ctx, logger, userID, rule)
	}

	return awarded
}

func (s *badgeService) matches(logger zerolog.Logger, rule BadgeRule, stats models.UserActivityStats) (matched bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			observability.BadgeFailures().WithLabelValues("condition").Inc()
			logger.Error().Str("badge_id", rule.ID).Interface("panic", recovered).Msg("badge condition panicked")
			matched = false
		}
	}()
	return rule.Condition(stats)
}

// award inserts the badge and its trail entry in one transaction. The unique index decides the
// race: a conflicting insert affects no rows and is reported as not created.
func (s *badgeService) award(ctx context.Context, userID uint, rule BadgeRule, trigger string) (bool, error) {
	created := false
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		award := models.UserBadge{UserID: userID, BadgeID: rule.ID, EarnedAt: s.now().UTC()}
		inserted, err := store.Badges.AwardIfAbsent(ctx, &award)
		if err != nil || !inserted {
			return err
		}

		_, err = appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: userID,
			Action:      models.TrailActionAwardBadge,
			EntityType:  models.TrailEntityBadge,
			EntityID:    award.ID,
			Details: map[string]interface{}{
				"user_id":    userID,
				"badge_id":   rule.ID,
				"badge_name": rule.Name,
				"trigger":    trigger,
			},
		})
		if err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *badgeService) notify(ctx context.Context, logger zerolog.Logger, userID uint, rule BadgeRule) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, userID, Notice{
		Title:       fmt.Sprintf("Badge earned: %s", rule.Name),
		Body:        rule.Description,
		RelatedType: models.TrailEntityBadge,
		RelatedID:   rule.ID,
	})
	if err != nil {
		observability.BadgeFailures().WithLabelValues("notify").Inc()
		logger.Warn().Err(err).Str("badge_id", rule.ID).Msg("failed to dispatch badge notification")
	}
}

func (s *badgeService) ListUserBadges(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error) {
	awards, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}

	responses := make([]dto.UserBadgeResponse, 0, len(awards))
	for _, award := range awards {
		rule, ok := s.registry.Lookup(award.BadgeID)
		catalog := dto.BadgeRuleResponse{ID: award.BadgeID, Name: award.BadgeID}
		if ok {
			catalog = newBadgeRuleResponse(rule)
		}
		responses = append(responses, dto.NewUserBadgeResponse(award, catalog))
	}
	return responses, nil
}

func (s *badgeService) Catalog() []dto.BadgeRuleResponse {
	rules := s.registry.All()
	catalog := make([]dto.BadgeRuleResponse, 0, len(rules))
	for _, rule := range rules {
		catalog = append(catalog, newBadgeRuleResponse(rule))
	}
	return catalog
}

func newBadgeRuleResponse(rule BadgeRule) dto.BadgeRuleResponse {
	return dto.BadgeRuleResponse{
		ID:          rule.ID,
		Name:        rule.Name,
		Description: rule.Description,
		Icon:        rule.Icon,
		Event:       string(rule.Event),
	}
}
