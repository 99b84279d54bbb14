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

// GormCarrierRepository implements catalog.CarrierRepository using GORM
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository creates a new GormCarrierRepository
func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

// FindByID finds a carrier by ID
func (r *GormCarrierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Carrier, error) {
	var model models.CarrierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a carrier by its unique code
func (r *GormCarrierRepository) FindByCode(ctx context.Context, code string) (*catalog.Carrier, error) {
	var model models.CarrierModel
	if err := r.db.WithContext(ctx).
		First(&model, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all non-deleted carriers matching the filter
func (r *GormCarrierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Carrier, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.CarrierModel{}).Where("deleted_at IS NULL")
	if active, ok := filter.Filters["active"]; ok {
		base = base.Where("active = ?", active)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var carrierModels []models.CarrierModel
	if err := base.
		Order("code ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&carrierModels).Error; err != nil {
		return nil, 0, err
	}

	carriers := make([]catalog.Carrier, len(carrierModels))
	for i, model := range carrierModels {
		carriers[i] = *model.ToDomain()
	}
	return carriers, total, nil
}

// ExistsByCode checks if a carrier with the given code exists
func (r *GormCarrierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CarrierModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a carrier
func (r *GormCarrierRepository) Save(ctx context.Context, carrier *catalog.Carrier) error {
	model := models.CarrierModelFromDomain(carrier)
	return r.db.WithContext(ctx).Save(model).Error
}
