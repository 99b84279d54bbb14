package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/shared"
)

// ChargeDueHandler consumes forwarding charge tasks from the outbox and
// settles them against the workspace balance. The forwarding request ID
// is the ledger reference, so a redelivered task finds the existing
// entry and charges nothing.
type ChargeDueHandler struct {
	balances    *BalanceService
	requestRepo forwarding.Repository
	logger      *zap.Logger
}

// NewChargeDueHandler creates a new ChargeDueHandler
func NewChargeDueHandler(
	balances *BalanceService,
	requestRepo forwarding.Repository,
	logger *zap.Logger,
) *ChargeDueHandler {
	return &ChargeDueHandler{
		balances:    balances,
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// EventTypes implements shared.EventHandler
func (h *ChargeDueHandler) EventTypes() []string {
	return []string{forwarding.EventTypeChargeDue}
}

// Handle implements shared.EventHandler. Errors are returned so the
// outbox processor retries the task; the balance charge and the paid
// mark are each idempotent, so partial progress is safe to replay.
func (h *ChargeDueHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	charge, ok := event.(*forwarding.ChargeDueEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	requestID, err := uuid.Parse(charge.RequestID)
	if err != nil {
		// A malformed task can never succeed; drop it rather than retry
		h.logger.Error("Charge task carries invalid request ID",
			zap.String("event_id", charge.EventID().String()),
			zap.String("request_id", charge.RequestID))
		return nil
	}

	h.logger.Info("Settling forwarding charge",
		zap.String("request_id", charge.RequestID),
		zap.String("workspace_id", charge.WorkspaceID().String()),
		zap.Int64("amount", charge.Amount))

	if _, err := h.balances.Charge(ctx, ChargeInput{
		WorkspaceID:   charge.WorkspaceID(),
		Amount:        charge.Amount,
		Currency:      charge.Currency,
		ReferenceType: billing.ReferenceTypeForwardingRequest,
		ReferenceID:   charge.RequestID,
		Description:   charge.Description,
	}); err != nil {
		return fmt.Errorf("failed to charge balance for request %s: %w", charge.RequestID, err)
	}

	return h.markRequestPaid(ctx, requestID)
}

func (h *ChargeDueHandler) markRequestPaid(ctx context.Context, requestID uuid.UUID) error {
	req, err := h.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("Forwarding request gone, charge settled without it",
				zap.String("request_id", requestID.String()))
			return nil
		}
		return fmt.Errorf("failed to load forwarding request %s: %w", requestID, err)
	}

	if req.PaymentStatus == forwarding.PaymentStatusPaid {
		return nil
	}

	req.MarkPaid()
	req.IncrementVersion()
	if err := h.requestRepo.Save(ctx, req); err != nil {
		return fmt.Errorf("failed to mark request %s paid: %w", requestID, err)
	}
	return nil
}
