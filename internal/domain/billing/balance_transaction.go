package billing

import (
	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// TransactionType classifies a balance movement
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// ReferenceType names the kind of record a transaction points back to
type ReferenceType string

const (
	ReferenceTypeForwardingRequest ReferenceType = "FORWARDING_REQUEST"
	ReferenceTypeStripePayment     ReferenceType = "STRIPE_PAYMENT"
	ReferenceTypeManualAdjustment  ReferenceType = "MANUAL_ADJUSTMENT"
)

// BalanceTransaction is the immutable ledger entry for one balance
// movement. BalanceAfter and DebtAfter snapshot the account as it stood
// once this entry applied.
type BalanceTransaction struct {
	shared.WorkspaceAggregateRoot
	Type          TransactionType
	Amount        int64
	Currency      string
	BalanceAfter  int64
	DebtAfter     int64
	ReferenceType ReferenceType
	ReferenceID   string
	Description   string
}

// NewBalanceTransaction creates a ledger entry
func NewBalanceTransaction(
	workspaceID uuid.UUID,
	txType TransactionType,
	amount int64,
	currency string,
	balanceAfter, debtAfter int64,
	refType ReferenceType,
	refID, description string,
) (*BalanceTransaction, error) {
	if amount < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be negative")
	}
	if txType != TransactionTypeCredit && txType != TransactionTypeDebit {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Unknown transaction type")
	}
	return &BalanceTransaction{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		Type:                   txType,
		Amount:                 amount,
		Currency:               currency,
		BalanceAfter:           balanceAfter,
		DebtAfter:              debtAfter,
		ReferenceType:          refType,
		ReferenceID:            refID,
		Description:            description,
	}, nil
}
