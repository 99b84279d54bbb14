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

// GormTransactionRepository implements billing.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByWorkspace returns a page of a workspace's ledger entries
func (r *GormTransactionRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.BalanceTransaction], error) {
	base := r.db.WithContext(ctx).
		Model(&models.BalanceTransactionModel{}).
		Where("workspace_id = ?", workspaceID)
	if txType, ok := filter.Filters["type"]; ok {
		base = base.Where("type = ?", txType)
	}
	if refType, ok := filter.Filters["reference_type"]; ok {
		base = base.Where("reference_type = ?", refType)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, BalanceTransactionSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var txModels []models.BalanceTransactionModel
	if err := base.
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&txModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*billing.BalanceTransaction, len(txModels))
	for i := range txModels {
		transactions[i] = txModels[i].ToDomain()
	}
	page := shared.NewPaginated(transactions, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindByReference looks up the ledger entry booked against an external record
func (r *GormTransactionRepository) FindByReference(ctx context.Context, refType billing.ReferenceType, refID string) (*billing.BalanceTransaction, error) {
	var model models.BalanceTransactionModel
	if err := r.db.WithContext(ctx).
		First(&model, "reference_type = ? AND reference_id = ?", refType, refID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save appends a ledger entry. The unique reference index turns a duplicate
// booking into shared.ErrAlreadyExists.
func (r *GormTransactionRepository) Save(ctx context.Context, tx *billing.BalanceTransaction) error {
	model := models.BalanceTransactionModelFromDomain(tx)
	err := r.db.WithContext(ctx).Create(model).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
