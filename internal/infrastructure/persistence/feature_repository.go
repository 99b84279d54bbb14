package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormFeatureRepository implements catalog.FeatureRepository using GORM
type GormFeatureRepository struct {
	db *gorm.DB
}

// NewGormFeatureRepository creates a new GormFeatureRepository
func NewGormFeatureRepository(db *gorm.DB) *GormFeatureRepository {
	return &GormFeatureRepository{db: db}
}

// FindByID finds a feature by ID
func (r *GormFeatureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Feature, error) {
	var model models.FeatureModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a feature by its unique code
func (r *GormFeatureRepository) FindByCode(ctx context.Context, code string) (*catalog.Feature, error) {
	var model models.FeatureModel
	if err := r.db.WithContext(ctx).
		First(&model, "code = ?", strings.ToLower(strings.TrimSpace(code))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all non-deleted features matching the filter
func (r *GormFeatureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Feature, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.FeatureModel{}).Where("deleted_at IS NULL")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var featureModels []models.FeatureModel
	if err := base.
		Order("code ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&featureModels).Error; err != nil {
		return nil, 0, err
	}

	features := make([]catalog.Feature, len(featureModels))
	for i, model := range featureModels {
		features[i] = *model.ToDomain()
	}
	return features, total, nil
}

// Save creates or updates a feature
func (r *GormFeatureRepository) Save(ctx context.Context, feature *catalog.Feature) error {
	model := models.FeatureModelFromDomain(feature)
	return r.db.WithContext(ctx).Save(model).Error
}
