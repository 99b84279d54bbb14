package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormDeliveryAddressRepository implements mail.DeliveryAddressRepository using GORM
type GormDeliveryAddressRepository struct {
	db *gorm.DB
}

// NewGormDeliveryAddressRepository creates a new GormDeliveryAddressRepository
func NewGormDeliveryAddressRepository(db *gorm.DB) *GormDeliveryAddressRepository {
	return &GormDeliveryAddressRepository{db: db}
}

// FindByID finds a delivery address by ID
func (r *GormDeliveryAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.DeliveryAddress, error) {
	var model models.DeliveryAddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a delivery address scoped to a workspace
func (r *GormDeliveryAddressRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*mail.DeliveryAddress, error) {
	var model models.DeliveryAddressModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspace returns all non-deleted delivery addresses for a workspace,
// default address first
func (r *GormDeliveryAddressRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]mail.DeliveryAddress, error) {
	var addrModels []models.DeliveryAddressModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND deleted_at IS NULL", workspaceID).
		Order("is_default DESC, created_at ASC").
		Find(&addrModels).Error; err != nil {
		return nil, err
	}

	addresses := make([]mail.DeliveryAddress, len(addrModels))
	for i, model := range addrModels {
		addresses[i] = *model.ToDomain()
	}
	return addresses, nil
}

// Save creates or updates a delivery address
func (r *GormDeliveryAddressRepository) Save(ctx context.Context, address *mail.DeliveryAddress) error {
	model := models.DeliveryAddressModelFromDomain(address)
	return r.db.WithContext(ctx).Save(model).Error
}
