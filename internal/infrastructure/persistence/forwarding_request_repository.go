package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormForwardingRequestRepository implements forwarding.Repository using GORM
type GormForwardingRequestRepository struct {
	db *gorm.DB
}

// NewGormForwardingRequestRepository creates a new GormForwardingRequestRepository
func NewGormForwardingRequestRepository(db *gorm.DB) *GormForwardingRequestRepository {
	return &GormForwardingRequestRepository{db: db}
}

// FindByID finds a forwarding request by ID
func (r *GormForwardingRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*forwarding.ForwardingRequest, error) {
	var model models.ForwardingRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a forwarding request scoped to a workspace
func (r *GormForwardingRequestRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*forwarding.ForwardingRequest, error) {
	var model models.ForwardingRequestModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMailItem returns all requests raised against one mail item
func (r *GormForwardingRequestRepository) FindByMailItem(ctx context.Context, workspaceID, mailItemID uuid.UUID) ([]*forwarding.ForwardingRequest, error) {
	var reqModels []models.ForwardingRequestModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND mail_item_id = ?", workspaceID, mailItemID).
		Order("created_at DESC").
		Find(&reqModels).Error; err != nil {
		return nil, err
	}

	requests := make([]*forwarding.ForwardingRequest, len(reqModels))
	for i := range reqModels {
		requests[i] = reqModels[i].ToDomain()
	}
	return requests, nil
}

// FindByWorkspace returns a page of a workspace's forwarding requests
func (r *GormForwardingRequestRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	base := r.db.WithContext(ctx).
		Model(&models.ForwardingRequestModel{}).
		Where("workspace_id = ?", workspaceID)
	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	return r.findPaged(base, filter)
}

// FindByOfficeLocation lists requests handled at one office, across
// workspaces, optionally narrowed by status
func (r *GormForwardingRequestRepository) FindByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, status *forwarding.RequestStatus, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	base := r.db.WithContext(ctx).
		Model(&models.ForwardingRequestModel{}).
		Where("office_location_id = ?", officeLocationID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}
	return r.findPaged(base, filter)
}

// ExistsByDeliveryAddress reports whether any request references the address
func (r *GormForwardingRequestRepository) ExistsByDeliveryAddress(ctx context.Context, deliveryAddressID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ForwardingRequestModel{}).
		Where("delivery_address_id = ?", deliveryAddressID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormForwardingRequestRepository) findPaged(base *gorm.DB, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, ForwardingRequestSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	query := base.
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("tracking_code ILIKE ? OR carrier ILIKE ?", pattern, pattern)
	}

	var reqModels []models.ForwardingRequestModel
	if err := query.Find(&reqModels).Error; err != nil {
		return nil, err
	}

	requests := make([]*forwarding.ForwardingRequest, len(reqModels))
	for i := range reqModels {
		requests[i] = reqModels[i].ToDomain()
	}
	page := shared.NewPaginated(requests, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a forwarding request. Updates are version-guarded.
func (r *GormForwardingRequestRepository) Save(ctx context.Context, req *forwarding.ForwardingRequest) error {
	return r.save(r.db.WithContext(ctx), req)
}

// SaveWithOutbox persists the request and its outbox entries in one
// transaction so a committed state change always has its follow-up work
// queued alongside it.
func (r *GormForwardingRequestRepository) SaveWithOutbox(ctx context.Context, req *forwarding.ForwardingRequest, entries ...*shared.OutboxEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.save(tx, req); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := tx.Create(models.OutboxEntryModelFromDomain(entry)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormForwardingRequestRepository) save(db *gorm.DB, req *forwarding.ForwardingRequest) error {
	model := models.ForwardingRequestModelFromDomain(req)
	if req.Version <= 1 {
		return db.Create(model).Error
	}
	result := db.
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
