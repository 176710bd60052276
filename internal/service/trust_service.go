package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/repository"
)

// TrustService aggregates a user's standing and exposes the manual unban.
type TrustService interface {
	Summary(ctx context.Context, userID uint) (dto.TrustSummaryResponse, error)
	Unban(ctx context.Context, userID, moderatorID uint, payload dto.UnbanRequest) (dto.BanStateResponse, error)
}

type trustService struct {
	users      repository.UserRepository
	warnings   repository.WarningRepository
	badges     BadgeService
	stats      StatsProvider
	engagement EngagementPolicy
	tx         repository.Transactor
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewTrustService constructs the trust summary service.
func NewTrustService(users repository.UserRepository, warnings repository.WarningRepository, badges BadgeService, stats StatsProvider, engagement EngagementPolicy, transactor repository.Transactor, validator *validator.Validate, logger zerolog.Logger) TrustService {
	return &trustService{
		users:      users,
		warnings:   warnings,
		badges:     badges,
		stats:      stats,
		engagement: engagement,
		tx:         transactor,
		validator:  validator,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "trust_service").Logger(),
	}
}

func (s *trustService) Summary(ctx context.Context, userID uint) (dto.TrustSummaryResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.TrustSummaryResponse{}, notFoundAs(err, ErrUserNotFound)
	}

	level, err := currentLevel(ctx, s.warnings, userID)
	if err != nil {
		return dto.TrustSummaryResponse{}, storageError(err)
	}

	badges, err := s.badges.ListUserBadges(ctx, userID)
	if err != nil {
		return dto.TrustSummaryResponse{}, err
	}

	// A missing snapshot degrades the score to zero rather than failing the summary.
	score := 0
	stats, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("engagement stats unavailable")
	} else {
		score = s.engagement.Score(stats)
	}

	return dto.TrustSummaryResponse{
		UserID:          user.ID,
		Ban:             dto.NewBanStateResponse(user),
		CurrentLevel:    level,
		NextLevel:       NextWarningLevel(level),
		Badges:          badges,
		EngagementScore: score,
	}, nil
}

func (s *trustService) Unban(ctx context.Context, userID, moderatorID uint, payload dto.UnbanRequest) (dto.BanStateResponse, error) {
	payload.Reason = strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if err := s.validator.Struct(payload); err != nil {
		return dto.BanStateResponse{}, validationError(err)
	}
	if userID == moderatorID {
		return dto.BanStateResponse{}, ErrSelfModeration
	}

	var user models.User
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		if _, err := requireModerator(ctx, store.Users, moderatorID); err != nil {
			return err
		}

		target, err := store.Users.LockByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if !target.IsBanned {
			return ErrUserNotBanned
		}

		if err := store.Users.Unban(ctx, userID); err != nil {
			return err
		}

		_, err = appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: moderatorID,
			Action:      models.TrailActionUnbanUser,
			EntityType:  models.TrailEntityUser,
			EntityID:    userID,
			Details: map[string]interface{}{
				"reason":          payload.Reason,
				"previous_reason": derefString(target.BanReason),
			},
		})
		if err != nil {
			return err
		}

		user, err = store.Users.FindByID(ctx, userID)
		return err
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to unban user")
		}
		return dto.BanStateResponse{}, storageError(err)
	}

	s.logger.Info().Uint("user_id", userID).Uint("moderator_id", moderatorID).Msg("user unbanned")
	return dto.NewBanStateResponse(user), nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
