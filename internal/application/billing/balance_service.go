package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/shared"
)

// applyDeltaAttempts bounds the optimistic retry loop around the
// conditional balance UPDATE
const applyDeltaAttempts = 3

// ChargeInput debits a workspace balance for an external record
type ChargeInput struct {
	WorkspaceID   uuid.UUID
	Amount        int64
	Currency      string
	ReferenceType billing.ReferenceType
	ReferenceID   string
	Description   string
}

// CreditInput credits a workspace balance for an external record
type CreditInput struct {
	WorkspaceID   uuid.UUID
	Amount        int64
	Currency      string
	ReferenceType billing.ReferenceType
	ReferenceID   string
	Description   string
}

// BalanceService manages prepaid workspace balances and their ledger.
// Every mutation lands as an immutable BalanceTransaction keyed by the
// external reference, so replayed charge tasks and webhook deliveries
// settle exactly once.
type BalanceService struct {
	balanceRepo billing.BalanceRepository
	txRepo      billing.TransactionRepository
	logger      *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	balanceRepo billing.BalanceRepository,
	txRepo billing.TransactionRepository,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		balanceRepo: balanceRepo,
		txRepo:      txRepo,
		logger:      logger,
	}
}

// GetBalance returns the workspace balance, materializing a zero balance
// for workspaces that have never been charged or topped up
func (s *BalanceService) GetBalance(ctx context.Context, workspaceID uuid.UUID) (*billing.WorkspaceBalance, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}

	balance, err := s.balanceRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return billing.NewWorkspaceBalance(workspaceID, "")
		}
		s.logger.Error("Failed to load workspace balance",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load balance")
	}
	return balance, nil
}

// Charge debits the balance. The charge never fails for lack of funds:
// whatever the balance cannot cover is recorded as debt on the account.
// A charge that already has a ledger entry for the same reference is
// returned as-is, which makes retried outbox tasks safe.
func (s *BalanceService) Charge(ctx context.Context, input ChargeInput) (*billing.BalanceTransaction, error) {
	if input.WorkspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if input.Amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}
	if input.ReferenceID == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Charge reference cannot be empty")
	}

	if existing, err := s.findExisting(ctx, input.ReferenceType, input.ReferenceID); err != nil {
		return nil, err
	} else if existing != nil {
		s.logger.Info("Charge already settled, skipping",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.String("reference_id", input.ReferenceID))
		return existing, nil
	}

	after, err := s.applyWithRetry(ctx, input.WorkspaceID, input.Currency, func(b *billing.WorkspaceBalance) (int64, int64) {
		covered := input.Amount
		if covered > b.Balance {
			covered = b.Balance
		}
		return -covered, input.Amount - covered
	})
	if err != nil {
		return nil, err
	}

	tx, err := billing.NewBalanceTransaction(
		input.WorkspaceID,
		billing.TransactionTypeDebit,
		input.Amount,
		after.Currency,
		after.Balance,
		after.Debt,
		input.ReferenceType,
		input.ReferenceID,
		input.Description,
	)
	if err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent worker settled the same reference between our
			// existence check and the insert
			return s.txRepo.FindByReference(ctx, input.ReferenceType, input.ReferenceID)
		}
		s.logger.Error("Failed to record balance debit",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.String("reference_id", input.ReferenceID),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record balance transaction")
	}

	s.logger.Info("Balance charged",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.Int64("amount", input.Amount),
		zap.Int64("balance_after", after.Balance),
		zap.Int64("debt_after", after.Debt),
		zap.String("reference_id", input.ReferenceID))

	return tx, nil
}

// Credit adds funds to the balance. Outstanding debt is settled before
// anything lands on the spendable balance. Duplicate references are
// ignored the same way Charge ignores them.
func (s *BalanceService) Credit(ctx context.Context, input CreditInput) (*billing.BalanceTransaction, error) {
	if input.WorkspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if input.Amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if input.ReferenceID == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Credit reference cannot be empty")
	}

	if existing, err := s.findExisting(ctx, input.ReferenceType, input.ReferenceID); err != nil {
		return nil, err
	} else if existing != nil {
		s.logger.Info("Credit already settled, skipping",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.String("reference_id", input.ReferenceID))
		return existing, nil
	}

	after, err := s.applyWithRetry(ctx, input.WorkspaceID, input.Currency, func(b *billing.WorkspaceBalance) (int64, int64) {
		settled := input.Amount
		if settled > b.Debt {
			settled = b.Debt
		}
		return input.Amount - settled, -settled
	})
	if err != nil {
		return nil, err
	}

	tx, err := billing.NewBalanceTransaction(
		input.WorkspaceID,
		billing.TransactionTypeCredit,
		input.Amount,
		after.Currency,
		after.Balance,
		after.Debt,
		input.ReferenceType,
		input.ReferenceID,
		input.Description,
	)
	if err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.txRepo.FindByReference(ctx, input.ReferenceType, input.ReferenceID)
		}
		s.logger.Error("Failed to record balance credit",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.String("reference_id", input.ReferenceID),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record balance transaction")
	}

	s.logger.Info("Balance credited",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.Int64("amount", input.Amount),
		zap.Int64("balance_after", after.Balance),
		zap.Int64("debt_after", after.Debt),
		zap.String("reference_id", input.ReferenceID))

	return tx, nil
}

// ListTransactions pages through the workspace ledger
func (s *BalanceService) ListTransactions(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.BalanceTransaction], error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	return s.txRepo.FindByWorkspace(ctx, workspaceID, filter)
}

func (s *BalanceService) findExisting(ctx context.Context, refType billing.ReferenceType, refID string) (*billing.BalanceTransaction, error) {
	existing, err := s.txRepo.FindByReference(ctx, refType, refID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("Failed to check transaction reference", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check transaction reference")
	}
	return existing, nil
}

// applyWithRetry runs the conditional balance UPDATE, re-reading and
// recomputing the deltas when a concurrent writer bumped the version
// first. The deltas function sees the current balance and returns
// (balanceDelta, debtDelta).
func (s *BalanceService) applyWithRetry(
	ctx context.Context,
	workspaceID uuid.UUID,
	currency string,
	deltas func(*billing.WorkspaceBalance) (int64, int64),
) (*billing.WorkspaceBalance, error) {
	for attempt := 0; attempt < applyDeltaAttempts; attempt++ {
		balance, err := s.loadOrCreate(ctx, workspaceID, currency)
		if err != nil {
			return nil, err
		}

		balanceDelta, debtDelta := deltas(balance)
		after, err := s.balanceRepo.ApplyDelta(ctx, workspaceID, balanceDelta, debtDelta, balance.Version)
		if err == nil {
			return after, nil
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Debug("Balance version conflict, retrying",
				zap.String("workspace_id", workspaceID.String()),
				zap.Int("attempt", attempt+1))
			continue
		}
		s.logger.Error("Failed to apply balance delta",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update balance")
	}
	return nil, shared.ErrConcurrencyConflict
}

// loadOrCreate returns the persisted balance, inserting a zero row the
// first time a workspace is touched. A racing insert is resolved by
// re-reading the winner's row.
func (s *BalanceService) loadOrCreate(ctx context.Context, workspaceID uuid.UUID, currency string) (*billing.WorkspaceBalance, error) {
	balance, err := s.balanceRepo.FindByWorkspace(ctx, workspaceID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to load workspace balance",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load balance")
	}

	fresh, err := billing.NewWorkspaceBalance(workspaceID, currency)
	if err != nil {
		return nil, err
	}
	if err := s.balanceRepo.Save(ctx, fresh); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.balanceRepo.FindByWorkspace(ctx, workspaceID)
		}
		s.logger.Error("Failed to create workspace balance",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create balance")
	}
	return fresh, nil
}
