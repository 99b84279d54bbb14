package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// WorkspaceBalance is the prepaid account of a workspace in minor currency
// units. The balance never goes negative: a charge larger than the balance
// drains it to zero and records the shortfall as debt.
type WorkspaceBalance struct {
	shared.BaseAggregateRoot
	WorkspaceID uuid.UUID
	Balance     int64
	Debt        int64
	Currency    string
}

// NewWorkspaceBalance creates a zero balance for a workspace
func NewWorkspaceBalance(workspaceID uuid.UUID, currency string) (*WorkspaceBalance, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if currency == "" {
		currency = "USD"
	}
	return &WorkspaceBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WorkspaceID:       workspaceID,
		Balance:           0,
		Debt:              0,
		Currency:          currency,
	}, nil
}

// Deduct charges the balance. When the balance cannot cover the amount it
// is clamped to zero and the uncovered remainder is added to debt, so the
// charge always succeeds and the shortfall stays visible.
func (b *WorkspaceBalance) Deduct(amount int64) error {
	if amount < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Deduction amount cannot be negative")
	}
	if amount <= b.Balance {
		b.Balance -= amount
	} else {
		b.Debt += amount - b.Balance
		b.Balance = 0
	}
	b.UpdatedAt = time.Now()
	return nil
}

// Credit adds funds. Outstanding debt is settled first; only the remainder
// lands on the spendable balance.
func (b *WorkspaceBalance) Credit(amount int64) error {
	if amount < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount cannot be negative")
	}
	if b.Debt > 0 {
		if amount >= b.Debt {
			amount -= b.Debt
			b.Debt = 0
		} else {
			b.Debt -= amount
			amount = 0
		}
	}
	b.Balance += amount
	b.UpdatedAt = time.Now()
	return nil
}

// HasDebt returns true when the workspace owes money
func (b *WorkspaceBalance) HasDebt() bool {
	return b.Debt > 0
}
