package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// AppealFilter narrows appeal listings for moderator queues.
type AppealFilter struct {
	Status   models.AppealStatus
	Page     int
	PageSize int
	// OldestFirst orders the queue by age instead of recency.
	OldestFirst bool
}

// AppealRepository persists ban appeals.
type AppealRepository interface {
	Create(ctx context.Context, appeal *models.BanAppeal) error
	FindByID(ctx context.Context, id uint) (models.BanAppeal, error)
	LockByID(ctx context.Context, id uint) (models.BanAppeal, error)
	HasPending(ctx context.Context, userID uint) (bool, error)
	LatestForUser(ctx context.Context, userID uint) (models.BanAppeal, error)
	List(ctx context.Context, filter AppealFilter) ([]models.BanAppeal, int64, error)
	Update(ctx context.Context, appeal *models.BanAppeal) error
}

type appealRepository struct {
	db *gorm.DB
}

// NewAppealRepository constructs the appeal repository.
func NewAppealRepository(db *gorm.DB) AppealRepository {
	return &appealRepository{db: db}
}

func (r *appealRepository) Create(ctx context.Context, appeal *models.BanAppeal) error {
	return r.db.WithContext(ctx).Create(appeal).Error
}

func (r *appealRepository) FindByID(ctx context.Context, id uint) (models.BanAppeal, error) {
	var appeal models.BanAppeal
	if err := r.db.WithContext(ctx).First(&appeal, id).Error; err != nil {
		return models.BanAppeal{}, err
	}
	return appeal, nil
}

func (r *appealRepository) LockByID(ctx context.Context, id uint) (models.BanAppeal, error) {
	var appeal models.BanAppeal
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&appeal, id).Error; err != nil {
		return models.BanAppeal{}, err
	}
	return appeal, nil
}

func (r *appealRepository) HasPending(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BanAppeal{}).
		Where("user_id = ? AND status = ?", userID, models.AppealStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appealRepository) LatestForUser(ctx context.Context, userID uint) (models.BanAppeal, error) {
	var appeal models.BanAppeal
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		First(&appeal).Error; err != nil {
		return models.BanAppeal{}, err
	}
	return appeal, nil
}

func (r *appealRepository) List(ctx context.Context, filter AppealFilter) ([]models.BanAppeal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BanAppeal{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if filter.OldestFirst {
		query = query.Order("created_at ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var appeals []models.BanAppeal
	if err := query.Find(&appeals).Error; err != nil {
		return nil, 0, err
	}

	return appeals, total, nil
}

func (r *appealRepository) Update(ctx context.Context, appeal *models.BanAppeal) error {
	return r.db.WithContext(ctx).Save(appeal).Error
}
