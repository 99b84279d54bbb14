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

// GormMailItemRepository implements mail.MailItemRepository using GORM
type GormMailItemRepository struct {
	db *gorm.DB
}

// NewGormMailItemRepository creates a new GormMailItemRepository
func NewGormMailItemRepository(db *gorm.DB) *GormMailItemRepository {
	return &GormMailItemRepository{db: db}
}

// FindByID finds a mail item by ID
func (r *GormMailItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.MailItem, error) {
	var model models.MailItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a mail item by ID within a workspace
func (r *GormMailItemRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*mail.MailItem, error) {
	var model models.MailItemModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMailbox finds mail items for a mailbox matching the filter
func (r *GormMailItemRepository) FindByMailbox(ctx context.Context, mailboxID uuid.UUID, filter shared.Filter) ([]mail.MailItem, int64, error) {
	return r.findPaged(ctx, "mailbox_id = ?", mailboxID, filter)
}

// FindByOfficeLocation finds mail items received at an office location
func (r *GormMailItemRepository) FindByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, filter shared.Filter) ([]mail.MailItem, int64, error) {
	return r.findPaged(ctx, "office_location_id = ?", officeLocationID, filter)
}

func (r *GormMailItemRepository) findPaged(ctx context.Context, cond string, arg any, filter shared.Filter) ([]mail.MailItem, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.MailItemModel{}).Where(cond, arg)
	base = r.applyFlagFilters(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var itemModels []models.MailItemModel
	query := base.
		Order(ValidateSortField(filter.OrderBy, MailItemSortFields, "received_at") + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("sender_name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if err := query.Find(&itemModels).Error; err != nil {
		return nil, 0, err
	}

	items := make([]mail.MailItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = *model.ToDomain()
	}
	return items, total, nil
}

// applyFlagFilters narrows a query by item flag filters
func (r *GormMailItemRepository) applyFlagFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "is_forwarded":
			query = query.Where("is_forwarded = ?", value)
		case "is_shredded":
			query = query.Where("is_shredded = ?", value)
		case "is_junk":
			query = query.Where("is_junk = ?", value)
		case "is_scanned":
			query = query.Where("is_scanned = ?", value)
		case "is_held":
			query = query.Where("is_held = ?", value)
		}
	}
	return query
}

// Save creates or updates a mail item
func (r *GormMailItemRepository) Save(ctx context.Context, item *mail.MailItem) error {
	model := models.MailItemModelFromDomain(item)
	return r.db.WithContext(ctx).Save(model).Error
}
