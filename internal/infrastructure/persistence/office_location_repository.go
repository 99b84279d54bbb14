package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormOfficeLocationRepository implements mail.OfficeLocationRepository using GORM
type GormOfficeLocationRepository struct {
	db *gorm.DB
}

// NewGormOfficeLocationRepository creates a new GormOfficeLocationRepository
func NewGormOfficeLocationRepository(db *gorm.DB) *GormOfficeLocationRepository {
	return &GormOfficeLocationRepository{db: db}
}

// FindByID finds an office location by ID
func (r *GormOfficeLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.OfficeLocation, error) {
	var model models.OfficeLocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all non-deleted office locations matching the filter
func (r *GormOfficeLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]mail.OfficeLocation, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.OfficeLocationModel{}).Where("deleted_at IS NULL")
	if active, ok := filter.Filters["active"]; ok {
		base = base.Where("active = ?", active)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var locModels []models.OfficeLocationModel
	query := base.
		Order("code ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR addr_city ILIKE ?", pattern, pattern, pattern)
	}
	if err := query.Find(&locModels).Error; err != nil {
		return nil, 0, err
	}

	locations := make([]mail.OfficeLocation, len(locModels))
	for i, model := range locModels {
		locations[i] = *model.ToDomain()
	}
	return locations, total, nil
}

// ExistsByCode checks if a location with the given code exists
func (r *GormOfficeLocationRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OfficeLocationModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an office location
func (r *GormOfficeLocationRepository) Save(ctx context.Context, location *mail.OfficeLocation) error {
	model := models.OfficeLocationModelFromDomain(location)
	return r.db.WithContext(ctx).Save(model).Error
}
