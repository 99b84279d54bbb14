package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/billing"
)

// BillableWorkspaceSource lists workspaces whose subscription is in a
// state the gateway still bills for
type BillableWorkspaceSource struct {
	db *gorm.DB
}

// NewBillableWorkspaceSource creates a new BillableWorkspaceSource
func NewBillableWorkspaceSource(db *gorm.DB) *BillableWorkspaceSource {
	return &BillableWorkspaceSource{db: db}
}

// BillableWorkspaceIDs returns the distinct workspaces with an active,
// trialing, or past-due subscription
func (s *BillableWorkspaceSource) BillableWorkspaceIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("subscriptions").
		Where("status IN ?", []billing.SubscriptionStatus{
			billing.SubscriptionStatusActive,
			billing.SubscriptionStatusTrialing,
			billing.SubscriptionStatusPastDue,
		}).
		Distinct("workspace_id").
		Pluck("workspace_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
