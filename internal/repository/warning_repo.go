package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-trust-api/internal/models"
)

// WarningRepository persists disciplinary warnings.
type WarningRepository interface {
	Create(ctx context.Context, warning *models.Warning) error
	FindByID(ctx context.Context, id uint) (models.Warning, error)
	// LatestActive returns the user's most recently issued active warning or gorm.ErrRecordNotFound.
	// Issuance order is id order: inserts for a user are serialised by the user row lock, while
	// created_at comes from whichever node issued the warning and may be skewed.
	LatestActive(ctx context.Context, userID uint) (models.Warning, error)
	ListByUser(ctx context.Context, userID uint, activeOnly bool) ([]models.Warning, error)
	Deactivate(ctx context.Context, id uint) error
}

type warningRepository struct {
	db *gorm.DB
}

// NewWarningRepository constructs the warning repository.
func NewWarningRepository(db *gorm.DB) WarningRepository {
	return &warningRepository{db: db}
}

func (r *warningRepository) Create(ctx context.Context, warning *models.Warning) error {
	return r.db.WithContext(ctx).Create(warning).Error
}

func (r *warningRepository) FindByID(ctx context.Context, id uint) (models.Warning, error) {
	var warning models.Warning
	if err := r.db.WithContext(ctx).First(&warning, id).Error; err != nil {
		return models.Warning{}, err
	}
	return warning, nil
}

func (r *warningRepository) LatestActive(ctx context.Context, userID uint) (models.Warning, error) {
	var warning models.Warning
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("id DESC").
		First(&warning).Error; err != nil {
		return models.Warning{}, err
	}
	return warning, nil
}

func (r *warningRepository) ListByUser(ctx context.Context, userID uint, activeOnly bool) ([]models.Warning, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var warnings []models.Warning
	if err := query.Order("id DESC").Find(&warnings).Error; err != nil {
		return nil, err
	}
	return warnings, nil
}

func (r *warningRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Warning{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
