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

// GormShippingOptionRepository implements catalog.ShippingOptionRepository using GORM
type GormShippingOptionRepository struct {
	db *gorm.DB
}

// NewGormShippingOptionRepository creates a new GormShippingOptionRepository
func NewGormShippingOptionRepository(db *gorm.DB) *GormShippingOptionRepository {
	return &GormShippingOptionRepository{db: db}
}

// FindByID finds a shipping option by ID
func (r *GormShippingOptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ShippingOption, error) {
	var model models.ShippingOptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKind returns all non-deleted options of one kind
func (r *GormShippingOptionRepository) FindByKind(ctx context.Context, kind catalog.ShippingOptionKind) ([]catalog.ShippingOption, error) {
	var optionModels []models.ShippingOptionModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND deleted_at IS NULL", kind).
		Order("base_price ASC").
		Find(&optionModels).Error; err != nil {
		return nil, err
	}

	options := make([]catalog.ShippingOption, len(optionModels))
	for i, model := range optionModels {
		options[i] = *model.ToDomain()
	}
	return options, nil
}

// ExistsByCode checks if an option with the given code exists within a kind
func (r *GormShippingOptionRepository) ExistsByCode(ctx context.Context, kind catalog.ShippingOptionKind, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShippingOptionModel{}).
		Where("kind = ? AND code = ?", kind, strings.ToLower(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a shipping option
func (r *GormShippingOptionRepository) Save(ctx context.Context, option *catalog.ShippingOption) error {
	model := models.ShippingOptionModelFromDomain(option)
	return r.db.WithContext(ctx).Save(model).Error
}

// GormLocationShippingOptionRepository implements
// catalog.LocationShippingOptionRepository using GORM
type GormLocationShippingOptionRepository struct {
	db *gorm.DB
}

// NewGormLocationShippingOptionRepository creates a new GormLocationShippingOptionRepository
func NewGormLocationShippingOptionRepository(db *gorm.DB) *GormLocationShippingOptionRepository {
	return &GormLocationShippingOptionRepository{db: db}
}

// FindByLocation returns all option assignments for a location
func (r *GormLocationShippingOptionRepository) FindByLocation(ctx context.Context, officeLocationID uuid.UUID) ([]catalog.LocationShippingOption, error) {
	var assignmentModels []models.LocationShippingOptionModel
	if err := r.db.WithContext(ctx).
		Where("office_location_id = ?", officeLocationID).
		Order("created_at ASC").
		Find(&assignmentModels).Error; err != nil {
		return nil, err
	}

	assignments := make([]catalog.LocationShippingOption, len(assignmentModels))
	for i, model := range assignmentModels {
		assignments[i] = *model.ToDomain()
	}
	return assignments, nil
}

// FindByLocationAndKind returns a location's assignments of one kind along
// with the matching option rows, both ordered the same way
func (r *GormLocationShippingOptionRepository) FindByLocationAndKind(ctx context.Context, officeLocationID uuid.UUID, kind catalog.ShippingOptionKind) ([]catalog.LocationShippingOption, []catalog.ShippingOption, error) {
	var optionModels []models.ShippingOptionModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN location_shipping_options lso ON lso.shipping_option_id = shipping_options.id").
		Where("lso.office_location_id = ? AND shipping_options.kind = ? AND shipping_options.deleted_at IS NULL", officeLocationID, kind).
		Order("shipping_options.base_price ASC").
		Find(&optionModels).Error; err != nil {
		return nil, nil, err
	}
	if len(optionModels) == 0 {
		return nil, nil, nil
	}

	optionIDs := make([]uuid.UUID, len(optionModels))
	for i, model := range optionModels {
		optionIDs[i] = model.ID
	}

	var assignmentModels []models.LocationShippingOptionModel
	if err := r.db.WithContext(ctx).
		Where("office_location_id = ? AND shipping_option_id IN ?", officeLocationID, optionIDs).
		Find(&assignmentModels).Error; err != nil {
		return nil, nil, err
	}

	byOption := make(map[uuid.UUID]*models.LocationShippingOptionModel, len(assignmentModels))
	for i := range assignmentModels {
		byOption[assignmentModels[i].ShippingOptionID] = &assignmentModels[i]
	}

	assignments := make([]catalog.LocationShippingOption, 0, len(optionModels))
	options := make([]catalog.ShippingOption, 0, len(optionModels))
	for i := range optionModels {
		assignment, ok := byOption[optionModels[i].ID]
		if !ok {
			continue
		}
		assignments = append(assignments, *assignment.ToDomain())
		options = append(options, *optionModels[i].ToDomain())
	}
	return assignments, options, nil
}

// FindByLocationAndOption finds a single assignment by location and option
func (r *GormLocationShippingOptionRepository) FindByLocationAndOption(ctx context.Context, officeLocationID, shippingOptionID uuid.UUID) (*catalog.LocationShippingOption, error) {
	var model models.LocationShippingOptionModel
	if err := r.db.WithContext(ctx).
		First(&model, "office_location_id = ? AND shipping_option_id = ?", officeLocationID, shippingOptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an option assignment
func (r *GormLocationShippingOptionRepository) Save(ctx context.Context, assignment *catalog.LocationShippingOption) error {
	model := models.LocationShippingOptionModelFromDomain(assignment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an option assignment
func (r *GormLocationShippingOptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LocationShippingOptionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
