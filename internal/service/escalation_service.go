package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/observability"
	"github.com/noah-isme/gema-trust-api/internal/repository"
)

// DefaultTempBanDuration is how long a temp_ban lasts unless configured otherwise.
const DefaultTempBanDuration = 7 * 24 * time.Hour

var escalationLadder = map[models.WarningLevel]models.WarningLevel{
	models.WarningLevelNone:    models.WarningLevelFirst,
	models.WarningLevelFirst:   models.WarningLevelSecond,
	models.WarningLevelSecond:  models.WarningLevelTempBan,
	models.WarningLevelTempBan: models.WarningLevelPermBan,
	models.WarningLevelPermBan: models.WarningLevelPermBan,
}

// NextWarningLevel advances one rung. perm_ban is terminal; unknown levels restart the ladder.
func NextWarningLevel(current models.WarningLevel) models.WarningLevel {
	if next, ok := escalationLadder[current]; ok {
		return next
	}
	return models.WarningLevelFirst
}

// EscalationService issues warnings along the disciplinary ladder.
type EscalationService interface {
	NextLevel(ctx context.Context, userID uint) (dto.NextLevelResponse, error)
	IssueWarning(ctx context.Context, moderatorID uint, payload dto.IssueWarningRequest) (dto.IssueWarningResponse, error)
	Deactivate(ctx context.Context, warningID, moderatorID uint) (dto.WarningResponse, error)
	ListForUser(ctx context.Context, userID uint, activeOnly bool) ([]dto.WarningResponse, error)
}

type escalationService struct {
	users           repository.UserRepository
	warnings        repository.WarningRepository
	tx              repository.Transactor
	notifier        Notifier
	validator       *validator.Validate
	sanitizer       *bluemonday.Policy
	logger          zerolog.Logger
	tracer          trace.Tracer
	tempBanDuration time.Duration
	now             func() time.Time
}

// NewEscalationService constructs the escalation state machine.
func NewEscalationService(users repository.UserRepository, warnings repository.WarningRepository, transactor repository.Transactor, notifier Notifier, validator *validator.Validate, tempBanDuration time.Duration, logger zerolog.Logger) EscalationService {
	if tempBanDuration <= 0 {
		tempBanDuration = DefaultTempBanDuration
	}
	return &escalationService{
		users:           users,
		warnings:        warnings,
		tx:              transactor,
		notifier:        notifier,
		validator:       validator,
		sanitizer:       bluemonday.StrictPolicy(),
		logger:          logger.With().Str("component", "escalation_service").Logger(),
		tracer:          otel.Tracer("github.com/noah-isme/gema-trust-api/internal/service/escalation"),
		tempBanDuration: tempBanDuration,
		now:             time.Now,
	}
}

func (s *escalationService) NextLevel(ctx context.Context, userID uint) (dto.NextLevelResponse, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return dto.NextLevelResponse{}, notFoundAs(err, ErrUserNotFound)
	}

	current, err := currentLevel(ctx, s.warnings, userID)
	if err != nil {
		return dto.NextLevelResponse{}, storageError(err)
	}

	return dto.NextLevelResponse{
		UserID:       userID,
		CurrentLevel: current,
		NextLevel:    NextWarningLevel(current),
	}, nil
}

func (s *escalationService) IssueWarning(ctx context.Context, moderatorID uint, payload dto.IssueWarningRequest) (dto.IssueWarningResponse, error) {
	ctx, span := s.tracer.Start(ctx, "escalation.issue_warning", trace.WithAttributes(
		attribute.Int64("escalation.user_id", int64(payload.UserID)),
		attribute.Int64("escalation.moderator_id", int64(moderatorID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.IssueWarningResponse{}, validationError(err)
	}

	reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if reason == "" {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.IssueWarningResponse{}, fmt.Errorf("%w: reason is empty after sanitization", ErrValidation)
	}
	if payload.UserID == moderatorID {
		span.SetStatus(codes.Error, "self_moderation")
		return dto.IssueWarningResponse{}, ErrSelfModeration
	}

	var (
		warning  models.Warning
		previous models.WarningLevel
	)

	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		if _, err := requireModerator(ctx, store.Users, moderatorID); err != nil {
			return err
		}

		// The row lock serialises escalations for this user across processes.
		target, err := store.Users.LockByID(ctx, payload.UserID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}

		previous, err = currentLevel(ctx, store.Warnings, target.ID)
		if err != nil {
			return err
		}

		issuedAt := s.now().UTC()
		warning = models.Warning{
			UserID:      target.ID,
			ModeratorID: moderatorID,
			Level:       NextWarningLevel(previous),
			Reason:      reason,
			ReportID:    payload.ReportID,
			IsActive:    true,
			CreatedAt:   issuedAt,
		}
		if warning.Level == models.WarningLevelTempBan {
			expiresAt := issuedAt.Add(s.tempBanDuration)
			warning.ExpiresAt = &expiresAt
		}

		if err := store.Warnings.Create(ctx, &warning); err != nil {
			return err
		}

		details := map[string]interface{}{
			"user_id":        target.ID,
			"level":          string(warning.Level),
			"previous_level": string(previous),
			"reason":         reason,
		}
		if warning.ReportID != nil {
			details["report_id"] = *warning.ReportID
		}
		if warning.ExpiresAt != nil {
			details["expires_at"] = warning.ExpiresAt.Format(time.RFC3339)
		}
		if _, err := appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: moderatorID,
			Action:      models.TrailActionIssueWarning,
			EntityType:  models.TrailEntityWarning,
			EntityID:    warning.ID,
			Details:     details,
		}); err != nil {
			return err
		}

		if !warning.Level.IsBan() {
			return nil
		}

		// expires_at is nil for perm_ban, which leaves banned_until NULL.
		if err := store.Users.Ban(ctx, target.ID, warning.ExpiresAt, reason); err != nil {
			return err
		}

		banDetails := map[string]interface{}{
			"warning_id": warning.ID,
			"level":      string(warning.Level),
			"reason":     reason,
		}
		if warning.ExpiresAt != nil {
			banDetails["banned_until"] = warning.ExpiresAt.Format(time.RFC3339)
		}
		_, err = appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: moderatorID,
			Action:      models.TrailActionBanUser,
			EntityType:  models.TrailEntityUser,
			EntityID:    target.ID,
			Details:     banDetails,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "issue_warning_failed")
		if !isDomainError(err) {
			s.logger.Error().Err(err).Uint("user_id", payload.UserID).Msg("failed to issue warning")
		}
		return dto.IssueWarningResponse{}, storageError(err)
	}

	observability.WarningsIssued().WithLabelValues(string(warning.Level)).Inc()
	span.SetAttributes(attribute.String("escalation.level", string(warning.Level)))
	s.logger.Info().
		Uint("user_id", warning.UserID).
		Uint("moderator_id", moderatorID).
		Str("previous_level", string(previous)).
		Str("level", string(warning.Level)).
		Msg("warning issued")

	s.notifyWarning(ctx, warning)

	return dto.IssueWarningResponse{
		WarningID: warning.ID,
		UserID:    warning.UserID,
		Level:     warning.Level,
		ExpiresAt: warning.ExpiresAt,
		IsBanned:  warning.Level.IsBan(),
	}, nil
}

func (s *escalationService) Deactivate(ctx context.Context, warningID, moderatorID uint) (dto.WarningResponse, error) {
	ctx, span := s.tracer.Start(ctx, "escalation.deactivate_warning", trace.WithAttributes(
		attribute.Int64("escalation.warning_id", int64(warningID)),
		attribute.Int64("escalation.moderator_id", int64(moderatorID)),
	))
	defer span.End()

	var warning models.Warning
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		if _, err := requireModerator(ctx, store.Users, moderatorID); err != nil {
			return err
		}

		found, err := store.Warnings.FindByID(ctx, warningID)
		if err != nil {
			return notFoundAs(err, ErrWarningNotFound)
		}
		if _, err := store.Users.LockByID(ctx, found.UserID); err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}

		// Re-read under the user lock so a concurrent deactivation is observed.
		warning, err = store.Warnings.FindByID(ctx, warningID)
		if err != nil {
			return notFoundAs(err, ErrWarningNotFound)
		}
		if !warning.IsActive {
			return ErrWarningInactive
		}

		if err := store.Warnings.Deactivate(ctx, warning.ID); err != nil {
			return err
		}
		warning.IsActive = false

		_, err = appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: moderatorID,
			Action:      models.TrailActionDeactivateWarning,
			EntityType:  models.TrailEntityWarning,
			EntityID:    warning.ID,
			Details: map[string]interface{}{
				"user_id": warning.UserID,
				"level":   string(warning.Level),
			},
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deactivate_warning_failed")
		return dto.WarningResponse{}, storageError(err)
	}

	return dto.NewWarningResponse(warning), nil
}

func (s *escalationService) ListForUser(ctx context.Context, userID uint, activeOnly bool) ([]dto.WarningResponse, error) {
	warnings, err := s.warnings.ListByUser(ctx, userID, activeOnly)
	if err != nil {
		return nil, storageError(err)
	}
	return dto.NewWarningResponseSlice(warnings), nil
}

func (s *escalationService) notifyWarning(ctx context.Context, warning models.Warning) {
	if s.notifier == nil {
		return
	}

	title := "You received a warning"
	body := fmt.Sprintf("A moderator issued a warning: %s", warning.Reason)
	switch warning.Level {
	case models.WarningLevelTempBan:
		title = "Your account has been temporarily suspended"
		body = fmt.Sprintf("Suspended until %s: %s", warning.ExpiresAt.Format(time.RFC1123), warning.Reason)
	case models.WarningLevelPermBan:
		title = "Your account has been permanently banned"
		body = warning.Reason
	}

	if err := s.notifier.Notify(ctx, warning.UserID, Notice{
		Title:       title,
		Body:        body,
		RelatedType: models.TrailEntityWarning,
		RelatedID:   fmt.Sprintf("%d", warning.ID),
	}); err != nil {
		s.logger.Warn().Err(err).Uint("warning_id", warning.ID).Msg("failed to dispatch warning notification")
	}
}

func currentLevel(ctx context.Context, warnings repository.WarningRepository, userID uint) (models.WarningLevel, error) {
	latest, err := warnings.LatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.WarningLevelNone, nil
		}
		return models.WarningLevelNone, err
	}
	return latest.Level, nil
}

// requireModerator verifies the actor holds a moderation role.
func requireModerator(ctx context.Context, users repository.UserRepository, moderatorID uint) (models.User, error) {
	if moderatorID == 0 {
		return models.User{}, ErrNotModerator
	}
	moderator, err := users.FindByID(ctx, moderatorID)
	if err != nil {
		return models.User{}, notFoundAs(err, ErrNotModerator)
	}
	if !moderator.IsModerator() {
		return models.User{}, ErrNotModerator
	}
	return moderator, nil
}
