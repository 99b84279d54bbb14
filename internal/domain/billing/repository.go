package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// BalanceRepository persists workspace balances
type BalanceRepository interface {
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*WorkspaceBalance, error)
	Save(ctx context.Context, balance *WorkspaceBalance) error
	// ApplyDelta performs the balance mutation as a single conditional
	// UPDATE so concurrent charges cannot interleave a stale read with a
	// write. It returns the balance as it stands after the change.
	ApplyDelta(ctx context.Context, workspaceID uuid.UUID, balanceDelta, debtDelta int64, expectedVersion int) (*WorkspaceBalance, error)
}

// TransactionRepository persists the balance ledger
type TransactionRepository interface {
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*BalanceTransaction], error)
	// FindByReference looks up the ledger entry for an external record,
	// used to make charge tasks idempotent
	FindByReference(ctx context.Context, refType ReferenceType, refID string) (*BalanceTransaction, error)
	Save(ctx context.Context, tx *BalanceTransaction) error
}

// SubscriptionRepository persists gateway subscription mirrors
type SubscriptionRepository interface {
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*Subscription, error)
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)
	Save(ctx context.Context, sub *Subscription) error
}

// UsageRepository persists per-period feature usage counters
type UsageRepository interface {
	FindByWorkspaceFeaturePeriod(ctx context.Context, workspaceID uuid.UUID, featureCode, period string) (*UsageRecord, error)
	FindByWorkspacePeriod(ctx context.Context, workspaceID uuid.UUID, period string) ([]*UsageRecord, error)
	Save(ctx context.Context, record *UsageRecord) error
}
