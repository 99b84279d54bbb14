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

// GormPlanRepository implements catalog.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a plan by its unique code
func (r *GormPlanRepository) FindByCode(ctx context.Context, code string) (*catalog.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).
		First(&model, "code = ?", strings.ToLower(strings.TrimSpace(code))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all non-deleted plans matching the filter
func (r *GormPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Plan, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.PlanModel{}).Where("deleted_at IS NULL")
	if active, ok := filter.Filters["active"]; ok {
		base = base.Where("active = ?", active)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, PlanSortFields, "monthly_price")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var planModels []models.PlanModel
	if err := base.
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&planModels).Error; err != nil {
		return nil, 0, err
	}

	plans := make([]catalog.Plan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans, total, nil
}

// ExistsByCode checks if a plan with the given code exists
func (r *GormPlanRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PlanModel{}).
		Where("code = ?", strings.ToLower(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *catalog.Plan) error {
	model := models.PlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Save(model).Error
}
