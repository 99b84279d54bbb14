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

// GormMailboxRepository implements mail.MailboxRepository using GORM
type GormMailboxRepository struct {
	db *gorm.DB
}

// NewGormMailboxRepository creates a new GormMailboxRepository
func NewGormMailboxRepository(db *gorm.DB) *GormMailboxRepository {
	return &GormMailboxRepository{db: db}
}

// FindByID finds a mailbox by ID
func (r *GormMailboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.Mailbox, error) {
	var model models.MailboxModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspace finds all mailboxes owned by a workspace
func (r *GormMailboxRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]mail.Mailbox, error) {
	var boxModels []models.MailboxModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&boxModels).Error; err != nil {
		return nil, err
	}

	boxes := make([]mail.Mailbox, len(boxModels))
	for i, model := range boxModels {
		boxes[i] = *model.ToDomain()
	}
	return boxes, nil
}

// ExistsByPMB checks if a PMB number is already taken at a location
func (r *GormMailboxRepository) ExistsByPMB(ctx context.Context, officeLocationID uuid.UUID, pmbNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MailboxModel{}).
		Where("office_location_id = ? AND pmb_number = ?", officeLocationID, pmbNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a mailbox
func (r *GormMailboxRepository) Save(ctx context.Context, mailbox *mail.Mailbox) error {
	model := models.MailboxModelFromDomain(mailbox)
	return r.db.WithContext(ctx).Save(model).Error
}
