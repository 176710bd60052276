package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// ActionTrailFilter narrows action trail queries.
type ActionTrailFilter struct {
	Page        int
	PageSize    int
	ActorUserID *uint
	EntityID    *uint
	Action      string
	EntityType  string
	From        *time.Time
	To          *time.Time
}

// ActionTrailRepository appends and reads the action trail. It exposes no update or delete.
type ActionTrailRepository interface {
	Create(ctx context.Context, entry *models.ActionTrailEntry) error
	List(ctx context.Context, filter ActionTrailFilter) ([]models.ActionTrailEntry, int64, error)
	DistinctActions(ctx context.Context) ([]string, error)
	DistinctEntityTypes(ctx context.Context) ([]string, error)
}

type actionTrailRepository struct {
	db *gorm.DB
}

// NewActionTrailRepository constructs the action trail repository.
func NewActionTrailRepository(db *gorm.DB) ActionTrailRepository {
	return &actionTrailRepository{db: db}
}

func (r *actionTrailRepository) Create(ctx context.Context, entry *models.ActionTrailEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *actionTrailRepository) List(ctx context.Context, filter ActionTrailFilter) ([]models.ActionTrailEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActionTrailEntry{})

	if filter.ActorUserID != nil {
		query = query.Where("actor_user_id = ?", *filter.ActorUserID)
	}

	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []models.ActionTrailEntry
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *actionTrailRepository) DistinctActions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "action")
}

func (r *actionTrailRepository) DistinctEntityTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "entity_type")
}

func (r *actionTrailRepository) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	if err := r.db.WithContext(ctx).
		Model(&models.ActionTrailEntry{}).
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
