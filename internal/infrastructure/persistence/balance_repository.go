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

// GormBalanceRepository implements billing.BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// FindByWorkspace finds a workspace's balance row
func (r *GormBalanceRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*billing.WorkspaceBalance, error) {
	var model models.WorkspaceBalanceModel
	if err := r.db.WithContext(ctx).
		First(&model, "workspace_id = ?", workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a balance row
func (r *GormBalanceRepository) Save(ctx context.Context, balance *billing.WorkspaceBalance) error {
	model := models.WorkspaceBalanceModelFromDomain(balance)
	return r.db.WithContext(ctx).Save(model).Error
}

// ApplyDelta mutates the balance with a single conditional UPDATE guarded by
// the row version. A stale version leaves zero rows affected and reports
// shared.ErrConcurrencyConflict so the caller can re-read and retry.
func (r *GormBalanceRepository) ApplyDelta(ctx context.Context, workspaceID uuid.UUID, balanceDelta, debtDelta int64, expectedVersion int) (*billing.WorkspaceBalance, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WorkspaceBalanceModel{}).
		Where("workspace_id = ? AND version = ?", workspaceID, expectedVersion).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", balanceDelta),
			"debt":    gorm.Expr("debt + ?", debtDelta),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row does not exist or the version moved under us.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.WorkspaceBalanceModel{}).
			Where("workspace_id = ?", workspaceID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, shared.ErrNotFound
		}
		return nil, shared.ErrConcurrencyConflict
	}

	var model models.WorkspaceBalanceModel
	if err := r.db.WithContext(ctx).
		First(&model, "workspace_id = ?", workspaceID).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}
