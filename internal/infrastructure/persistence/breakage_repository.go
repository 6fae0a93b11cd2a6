package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBreakageRepository implements breakage.Repository using GORM
type GormBreakageRepository struct {
	db *gorm.DB
}

// NewGormBreakageRepository creates a new GormBreakageRepository
func NewGormBreakageRepository(db *gorm.DB) *GormBreakageRepository {
	return &GormBreakageRepository{db: db}
}

// Create inserts a breakage
func (r *GormBreakageRepository) Create(ctx context.Context, b *breakage.Breakage) error {
	return r.db.WithContext(ctx).Create(models.BreakageModelFromDomain(b)).Error
}

// FindByID finds a breakage by its ID
func (r *GormBreakageRepository) FindByID(ctx context.Context, id uuid.UUID) (*breakage.Breakage, error) {
	var model models.BreakageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists breakages matching the filter with the total count
func (r *GormBreakageRepository) FindAll(ctx context.Context, filter breakage.Filter) ([]breakage.Breakage, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BreakageModel{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Reason != nil {
		query = query.Where("reason = ?", string(*filter.Reason))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BreakageModel
	if err := applyPaging(query, filter.Filter, breakageSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]breakage.Breakage, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// AttachPhoto stores the photo key of a breakage
func (r *GormBreakageRepository) AttachPhoto(ctx context.Context, id uuid.UUID, key string) error {
	result := r.db.WithContext(ctx).
		Model(&models.BreakageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"photo_key":  key,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBreakageRepository implements breakage.Repository
var _ breakage.Repository = (*GormBreakageRepository)(nil)
