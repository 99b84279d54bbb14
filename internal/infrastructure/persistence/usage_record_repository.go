package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormUsageRepository implements billing.UsageRepository using GORM
type GormUsageRepository struct {
	db *gorm.DB
}

// NewGormUsageRepository creates a new GormUsageRepository
func NewGormUsageRepository(db *gorm.DB) *GormUsageRepository {
	return &GormUsageRepository{db: db}
}

// FindByWorkspaceFeaturePeriod finds one usage counter
func (r *GormUsageRepository) FindByWorkspaceFeaturePeriod(ctx context.Context, workspaceID uuid.UUID, featureCode, period string) (*billing.UsageRecord, error) {
	var model models.UsageRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "workspace_id = ? AND feature_code = ? AND period = ?", workspaceID, featureCode, period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspacePeriod returns all usage counters for a workspace in a period
func (r *GormUsageRepository) FindByWorkspacePeriod(ctx context.Context, workspaceID uuid.UUID, period string) ([]*billing.UsageRecord, error) {
	var recordModels []models.UsageRecordModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND period = ?", workspaceID, period).
		Order("feature_code ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*billing.UsageRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, nil
}

// Save creates or updates a usage counter. Updates are version-guarded so two
// concurrent increments cannot collapse into one.
func (r *GormUsageRepository) Save(ctx context.Context, record *billing.UsageRecord) error {
	model := models.UsageRecordModelFromDomain(record)
	if record.Version <= 1 {
		return r.db.WithContext(ctx).Create(model).Error
	}
	result := r.db.WithContext(ctx).
		Model(&models.UsageRecordModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"count":      model.Count,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
