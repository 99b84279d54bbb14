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

// GormAddonRepository implements catalog.AddonRepository using GORM
type GormAddonRepository struct {
	db *gorm.DB
}

// NewGormAddonRepository creates a new GormAddonRepository
func NewGormAddonRepository(db *gorm.DB) *GormAddonRepository {
	return &GormAddonRepository{db: db}
}

// FindByID finds an addon by ID
func (r *GormAddonRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Addon, error) {
	var model models.AddonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all non-deleted addons matching the filter
func (r *GormAddonRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Addon, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.AddonModel{}).Where("deleted_at IS NULL")
	if recurring, ok := filter.Filters["recurring"]; ok {
		base = base.Where("recurring = ?", recurring)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var addonModels []models.AddonModel
	if err := base.
		Order("code ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&addonModels).Error; err != nil {
		return nil, 0, err
	}

	addons := make([]catalog.Addon, len(addonModels))
	for i, model := range addonModels {
		addons[i] = *model.ToDomain()
	}
	return addons, total, nil
}

// ExistsByCode checks if an addon with the given code exists
func (r *GormAddonRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AddonModel{}).
		Where("code = ?", strings.ToLower(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an addon
func (r *GormAddonRepository) Save(ctx context.Context, addon *catalog.Addon) error {
	model := models.AddonModelFromDomain(addon)
	return r.db.WithContext(ctx).Save(model).Error
}
