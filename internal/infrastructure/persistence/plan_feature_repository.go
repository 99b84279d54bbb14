package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormPlanFeatureRepository implements catalog.PlanFeatureRepository using GORM
type GormPlanFeatureRepository struct {
	db *gorm.DB
}

// NewGormPlanFeatureRepository creates a new GormPlanFeatureRepository
func NewGormPlanFeatureRepository(db *gorm.DB) *GormPlanFeatureRepository {
	return &GormPlanFeatureRepository{db: db}
}

// FindByPlan returns all feature assignments for a plan
func (r *GormPlanFeatureRepository) FindByPlan(ctx context.Context, planID uuid.UUID) ([]catalog.PlanFeature, error) {
	var pfModels []models.PlanFeatureModel
	if err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&pfModels).Error; err != nil {
		return nil, err
	}

	assignments := make([]catalog.PlanFeature, len(pfModels))
	for i, model := range pfModels {
		assignments[i] = *model.ToDomain()
	}
	return assignments, nil
}

// FindByPlanAndFeature finds a single assignment by plan and feature
func (r *GormPlanFeatureRepository) FindByPlanAndFeature(ctx context.Context, planID, featureID uuid.UUID) (*catalog.PlanFeature, error) {
	var model models.PlanFeatureModel
	if err := r.db.WithContext(ctx).
		First(&model, "plan_id = ? AND feature_id = ?", planID, featureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a plan-feature assignment
func (r *GormPlanFeatureRepository) Save(ctx context.Context, assignment *catalog.PlanFeature) error {
	model := models.PlanFeatureModelFromDomain(assignment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a plan-feature assignment
func (r *GormPlanFeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PlanFeatureModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
