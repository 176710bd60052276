package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/repository"
)

const (
	defaultTrailPageSize = 25
	maxTrailPageSize     = 200
	defaultExportLimit   = 10000
)

// TrailExportHeader is the fixed column order of trail exports.
var TrailExportHeader = []string{"id", "created_at", "action", "entity_type", "entity_id", "actor_user_id", "details"}

// TrailRecord captures the details required to append a trail entry.
type TrailRecord struct {
	ActorUserID uint
	Action      string
	EntityType  string
	EntityID    uint
	Details     map[string]interface{}
}

// ActionTrailService appends to and reads the action trail.
type ActionTrailService interface {
	Append(ctx context.Context, record TrailRecord) (dto.ActionTrailEntryResponse, error)
	Query(ctx context.Context, query dto.ActionTrailQuery) (dto.ActionTrailListResponse, error)
	DistinctActions(ctx context.Context) ([]string, error)
	DistinctEntityTypes(ctx context.Context) ([]string, error)
	Export(ctx context.Context, query dto.ActionTrailQuery) (dto.ActionTrailExport, error)
}

type actionTrailService struct {
	repo        repository.ActionTrailRepository
	cache       *redis.Client
	ttl         time.Duration
	exportLimit int
	logger      zerolog.Logger
}

// NewActionTrailService constructs the action trail service. The cache is optional.
func NewActionTrailService(repo repository.ActionTrailRepository, cache *redis.Client, ttl time.Duration, exportLimit int, logger zerolog.Logger) ActionTrailService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if exportLimit <= 0 {
		exportLimit = defaultExportLimit
	}
	return &actionTrailService{
		repo:        repo,
		cache:       cache,
		ttl:         ttl,
		exportLimit: exportLimit,
		logger:      logger.With().Str("component", "action_trail_service").Logger(),
	}
}

func (s *actionTrailService) Append(ctx context.Context, record TrailRecord) (dto.ActionTrailEntryResponse, error) {
	entry, err := appendTrail(ctx, s.repo, record)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Str("action", record.Action).Msg("failed to append action trail entry")
		}
		return dto.ActionTrailEntryResponse{}, storageError(err)
	}
	return dto.NewActionTrailEntryResponse(entry), nil
}

func (s *actionTrailService) Query(ctx context.Context, query dto.ActionTrailQuery) (dto.ActionTrailListResponse, error) {
	filter, err := trailFilter(query)
	if err != nil {
		return dto.ActionTrailListResponse{}, err
	}
	filter.Page = maxInt(query.Page, 1)
	filter.PageSize = clampPageSize(query.PageSize, defaultTrailPageSize, maxTrailPageSize)

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActionTrailListResponse{}, storageError(err)
	}

	items := make([]dto.ActionTrailEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActionTrailEntryResponse(entry))
	}

	return dto.ActionTrailListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *actionTrailService) DistinctActions(ctx context.Context) ([]string, error) {
	return s.cachedDistinct(ctx, "trail:distinct:v1:actions", s.repo.DistinctActions)
}

func (s *actionTrailService) DistinctEntityTypes(ctx context.Context) ([]string, error) {
	return s.cachedDistinct(ctx, "trail:distinct:v1:entity_types", s.repo.DistinctEntityTypes)
}

func (s *actionTrailService) cachedDistinct(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			var values []string
			if err := json.Unmarshal([]byte(cached), &values); err == nil {
				return values, nil
			}
		}
	}

	values, err := load(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	if values == nil {
		values = []string{}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(values); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("failed to write trail distinct cache")
			}
		}
	}

	return values, nil
}

func (s *actionTrailService) Export(ctx context.Context, query dto.ActionTrailQuery) (dto.ActionTrailExport, error) {
	filter, err := trailFilter(query)
	if err != nil {
		return dto.ActionTrailExport{}, err
	}
	filter.Page = 1
	filter.PageSize = s.exportLimit

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActionTrailExport{}, storageError(err)
	}
	truncated := total > int64(len(entries))
	if truncated {
		s.logger.Warn().Int64("total", total).Int("limit", s.exportLimit).Msg("trail export truncated")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(TrailExportHeader); err != nil {
		return dto.ActionTrailExport{}, err
	}

	for _, entry := range entries {
		details := "{}"
		if len(entry.Details) > 0 {
			encoded, err := json.Marshal(entry.Details)
			if err != nil {
				return dto.ActionTrailExport{}, err
			}
			details = string(encoded)
		}

		row := []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.Action,
			entry.EntityType,
			strconv.FormatUint(uint64(entry.EntityID), 10),
			strconv.FormatUint(uint64(entry.ActorUserID), 10),
			details,
		}
		if err := writer.Write(row); err != nil {
			return dto.ActionTrailExport{}, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return dto.ActionTrailExport{}, err
	}

	return dto.ActionTrailExport{
		Content:   buf.Bytes(),
		Rows:      len(entries),
		Total:     total,
		Truncated: truncated,
	}, nil
}

// appendTrail inserts a trail entry through the given repository, which may be bound to a
// transaction so the entry commits with the mutation it describes.
func appendTrail(ctx context.Context, repo repository.ActionTrailRepository, record TrailRecord) (models.ActionTrailEntry, error) {
	action := strings.ToLower(strings.TrimSpace(record.Action))
	entityType := strings.ToLower(strings.TrimSpace(record.EntityType))
	if action == "" {
		return models.ActionTrailEntry{}, fmt.Errorf("%w: action is required", ErrValidation)
	}
	if entityType == "" {
		return models.ActionTrailEntry{}, fmt.Errorf("%w: entity type is required", ErrValidation)
	}

	entry := models.ActionTrailEntry{
		Action:      action,
		EntityType:  entityType,
		EntityID:    record.EntityID,
		ActorUserID: record.ActorUserID,
		Details:     sanitizeDetails(record.Details),
	}
	if err := repo.Create(ctx, &entry); err != nil {
		return models.ActionTrailEntry{}, err
	}
	return entry, nil
}

func trailFilter(query dto.ActionTrailQuery) (repository.ActionTrailFilter, error) {
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return repository.ActionTrailFilter{}, fmt.Errorf("%w: from must not be after to", ErrValidation)
	}

	filter := repository.ActionTrailFilter{
		Action:     strings.ToLower(strings.TrimSpace(query.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(query.EntityType)),
		From:       query.From,
		To:         query.To,
	}
	if query.ActorUserID > 0 {
		actor := query.ActorUserID
		filter.ActorUserID = &actor
	}
	if query.EntityID > 0 {
		entity := query.EntityID
		filter.EntityID = &entity
	}
	return filter, nil
}

func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func clampPageSize(size, fallback, max int) int {
	if size <= 0 {
		return fallback
	}
	if size > max {
		return max
	}
	return size
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
