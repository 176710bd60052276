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

const (
	defaultAppealPageSize = 20
	maxAppealPageSize     = 100
)

// AppealService manages ban appeals from submission to resolution.
type AppealService interface {
	Create(ctx context.Context, userID uint, payload dto.CreateAppealRequest) (dto.AppealResponse, error)
	Resolve(ctx context.Context, appealID, adminID uint, payload dto.ResolveAppealRequest) (dto.AppealResolutionResponse, error)
	GetForUser(ctx context.Context, userID uint) (dto.AppealResponse, error)
	ListPending(ctx context.Context) ([]dto.AppealResponse, error)
	List(ctx context.Context, request dto.AppealListRequest) (dto.AppealListResponse, error)
}

type appealService struct {
	appeals   repository.AppealRepository
	tx        repository.Transactor
	notifier  Notifier
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAppealService constructs the appeal workflow.
func NewAppealService(appeals repository.AppealRepository, transactor repository.Transactor, notifier Notifier, validator *validator.Validate, logger zerolog.Logger) AppealService {
	return &appealService{
		appeals:   appeals,
		tx:        transactor,
		notifier:  notifier,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "appeal_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-trust-api/internal/service/appeal"),
		now:       time.Now,
	}
}

func (s *appealService) Create(ctx context.Context, userID uint, payload dto.CreateAppealRequest) (dto.AppealResponse, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.create", trace.WithAttributes(
		attribute.Int64("appeal.user_id", int64(userID)),
	))
	defer span.End()

	if userID == 0 {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AppealResponse{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	payload.Reason = strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AppealResponse{}, validationError(err)
	}

	var appeal models.BanAppeal
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		user, err := store.Users.LockByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if !user.IsBanned {
			return ErrUserNotBanned
		}

		pending, err := store.Appeals.HasPending(ctx, userID)
		if err != nil {
			return err
		}
		if pending {
			return ErrAppealPending
		}

		appeal = models.BanAppeal{
			UserID:    userID,
			Reason:    payload.Reason,
			Status:    models.AppealStatusPending,
			CreatedAt: s.now().UTC(),
		}
		if err := store.Appeals.Create(ctx, &appeal); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAppealPending
			}
			return err
		}

		_, err = appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: userID,
			Action:      models.TrailActionCreateAppeal,
			EntityType:  models.TrailEntityAppeal,
			EntityID:    appeal.ID,
			Details: map[string]interface{}{
				"user_id": userID,
				"reason":  appeal.Reason,
			},
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_appeal_failed")
		if !isDomainError(err) {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to create appeal")
		}
		return dto.AppealResponse{}, storageError(err)
	}

	observability.Appeals().WithLabelValues(string(models.AppealStatusPending)).Inc()
	s.logger.Info().Uint("appeal_id", appeal.ID).Uint("user_id", userID).Msg("appeal submitted")

	return dto.NewAppealResponse(appeal), nil
}

func (s *appealService) Resolve(ctx context.Context, appealID, adminID uint, payload dto.ResolveAppealRequest) (dto.AppealResolutionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "appeal.resolve", trace.WithAttributes(
		attribute.Int64("appeal.id", int64(appealID)),
		attribute.Int64("appeal.admin_id", int64(adminID)),
		attribute.String("appeal.status", payload.Status),
	))
	defer span.End()

	payload.Status = strings.ToLower(strings.TrimSpace(payload.Status))
	payload.AdminResponse = strings.TrimSpace(s.sanitizer.Sanitize(payload.AdminResponse))
	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AppealResolutionResponse{}, validationError(err)
	}
	status := models.AppealStatus(payload.Status)

	var appeal models.BanAppeal
	err := s.tx.WithinTransaction(ctx, func(store repository.Store) error {
		if _, err := requireModerator(ctx, store.Users, adminID); err != nil {
			return err
		}

		found, err := store.Appeals.FindByID(ctx, appealID)
		if err != nil {
			return notFoundAs(err, ErrAppealNotFound)
		}
		if found.UserID == adminID {
			return ErrSelfModeration
		}
		if _, err := store.Users.LockByID(ctx, found.UserID); err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}

		// Re-read under the user lock so two moderators cannot both resolve it.
		appeal, err = store.Appeals.LockByID(ctx, appealID)
		if err != nil {
			return notFoundAs(err, ErrAppealNotFound)
		}
		if appeal.Status != models.AppealStatusPending {
			return ErrAppealResolved
		}

		resolvedAt := s.now().UTC()
		appeal.Status = status
		appeal.AdminID = &adminID
		appeal.ResolvedAt = &resolvedAt
		if payload.AdminResponse != "" {
			response := payload.AdminResponse
			appeal.AdminResponse = &response
		}
		if err := store.Appeals.Update(ctx, &appeal); err != nil {
			return err
		}

		action := models.TrailActionRejectAppeal
		if status == models.AppealStatusApproved {
			action = models.TrailActionApproveAppeal
		}
		if _, err := appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: adminID,
			Action:      action,
			EntityType:  models.TrailEntityAppeal,
			EntityID:    appeal.ID,
			Details: map[string]interface{}{
				"user_id":        appeal.UserID,
				"admin_response": payload.AdminResponse,
			},
		}); err != nil {
			return err
		}

		if status != models.AppealStatusApproved {
			return nil
		}

		if err := store.Users.Unban(ctx, appeal.UserID); err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		_, err = appendTrail(ctx, store.Trail, TrailRecord{
			ActorUserID: adminID,
			Action:      models.TrailActionUnbanUser,
			EntityType:  models.TrailEntityUser,
			EntityID:    appeal.UserID,
			Details: map[string]interface{}{
				"appeal_id": appeal.ID,
			},
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve_appeal_failed")
		if !isDomainError(err) {
			s.logger.Error().Err(err).Uint("appeal_id", appealID).Msg("failed to resolve appeal")
		}
		return dto.AppealResolutionResponse{}, storageError(err)
	}

	observability.Appeals().WithLabelValues(string(appeal.Status)).Inc()
	s.logger.Info().
		Uint("appeal_id", appeal.ID).
		Uint("user_id", appeal.UserID).
		Uint("admin_id", adminID).
		Str("status", string(appeal.Status)).
		Msg("appeal resolved")

	s.notifyResolution(ctx, appeal)

	return dto.AppealResolutionResponse{
		AppealID:       appeal.ID,
		AffectedUserID: appeal.UserID,
		Status:         appeal.Status,
	}, nil
}

func (s *appealService) GetForUser(ctx context.Context, userID uint) (dto.AppealResponse, error) {
	appeal, err := s.appeals.LatestForUser(ctx, userID)
	if err != nil {
		return dto.AppealResponse{}, notFoundAs(err, ErrAppealNotFound)
	}
	return dto.NewAppealResponse(appeal), nil
}

func (s *appealService) ListPending(ctx context.Context) ([]dto.AppealResponse, error) {
	appeals, _, err := s.appeals.List(ctx, repository.AppealFilter{
		Status:      models.AppealStatusPending,
		OldestFirst: true,
	})
	if err != nil {
		return nil, storageError(err)
	}
	return newAppealResponses(appeals), nil
}

func (s *appealService) List(ctx context.Context, request dto.AppealListRequest) (dto.AppealListResponse, error) {
	status := models.AppealStatus(strings.ToLower(strings.TrimSpace(request.Status)))
	switch status {
	case "", models.AppealStatusPending, models.AppealStatusApproved, models.AppealStatusRejected:
	default:
		return dto.AppealListResponse{}, fmt.Errorf("%w: unknown appeal status %q", ErrValidation, request.Status)
	}

	page := maxInt(request.Page, 1)
	pageSize := clampPageSize(request.PageSize, defaultAppealPageSize, maxAppealPageSize)

	appeals, total, err := s.appeals.List(ctx, repository.AppealFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.AppealListResponse{}, storageError(err)
	}

	return dto.AppealListResponse{
		Items:      newAppealResponses(appeals),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *appealService) notifyResolution(ctx context.Context, appeal models.BanAppeal) {
	if s.notifier == nil {
		return
	}

	notice := Notice{
		Title:       "Your appeal was rejected",
		Body:        "A moderator reviewed your appeal and the ban remains in place.",
		RelatedType: models.TrailEntityAppeal,
		RelatedID:   fmt.Sprintf("%d", appeal.ID),
	}
	if appeal.Status == models.AppealStatusApproved {
		notice.Title = "Your appeal was approved"
		notice.Body = "Your account has been reinstated."
	}
	if appeal.AdminResponse != nil {
		notice.Body = fmt.Sprintf("%s %s", notice.Body, *appeal.AdminResponse)
	}

	if err := s.notifier.Notify(ctx, appeal.UserID, notice); err != nil {
		s.logger.Warn().Err(err).Uint("appeal_id", appeal.ID).Msg("failed to dispatch appeal notification")
	}
}

func newAppealResponses(appeals []models.BanAppeal) []dto.AppealResponse {
	responses := make([]dto.AppealResponse, 0, len(appeals))
	for _, appeal := range appeals {
		responses = append(responses, dto.NewAppealResponse(appeal))
	}
	return responses
}
