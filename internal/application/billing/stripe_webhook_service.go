package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/payment"
)

// WebhookVerifier checks the gateway signature and decodes the event
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error)
}

// webhookEventTTL is how long processed webhook event IDs are remembered
const webhookEventTTL = 24 * time.Hour

// topUpPurpose is the metadata marker the top-up checkout puts on its
// payment intent
const topUpPurpose = "balance_top_up"

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// StripeWebhookService applies gateway webhook events to the local
// state: subscription mirror rows, workspace plan assignment, and
// balance credits for top-up payments. Stripe redelivers events until
// acknowledged, so every handler tolerates replays.
type StripeWebhookService struct {
	verifier         WebhookVerifier
	idempotency      shared.IdempotencyStore
	workspaceRepo    identity.WorkspaceRepository
	subscriptionRepo billing.SubscriptionRepository
	balances         *BalanceService
	cache            billing.EntitlementCache
	logger           *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(
	verifier WebhookVerifier,
	idempotency shared.IdempotencyStore,
	workspaceRepo identity.WorkspaceRepository,
	subscriptionRepo billing.SubscriptionRepository,
	balances *BalanceService,
	cache billing.EntitlementCache,
	logger *zap.Logger,
) *StripeWebhookService {
	return &StripeWebhookService{
		verifier:         verifier,
		idempotency:      idempotency,
		workspaceRepo:    workspaceRepo,
		subscriptionRepo: subscriptionRepo,
		balances:         balances,
		cache:            cache,
		logger:           logger,
	}
}

// ProcessWebhook verifies and dispatches one gateway webhook delivery
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.ID, webhookEventTTL)
		if err != nil {
			s.logger.Warn("Idempotency store unavailable, processing anyway",
				zap.String("event_id", event.ID),
				zap.Error(err))
		} else if !fresh {
			s.logger.Info("Duplicate webhook delivery ignored",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)))
			result.Message = "Duplicate event ignored"
			return result, nil
		}
	}

	s.logger.Info("Processing gateway webhook",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "payment_intent.succeeded":
		err = s.handlePaymentIntentSucceeded(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = s.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		err = s.handleInvoicePaymentFailed(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	return result, nil
}

// handleCheckoutCompleted credits the balance when a top-up checkout
// finishes. Subscription checkouts are reconciled by the subscription
// events that follow, so mode=subscription sessions are only logged.
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	if session.Mode != stripe.CheckoutSessionModePayment {
		s.logger.Debug("Checkout session completed",
			zap.String("session_id", session.ID),
			zap.String("mode", string(session.Mode)))
		return nil
	}
	if session.Metadata["purpose"] != topUpPurpose {
		return nil
	}

	workspaceID, err := workspaceIDFromMetadata(session.Metadata)
	if err != nil {
		s.logger.Warn("Top-up session carries no workspace, skipping",
			zap.String("session_id", session.ID))
		return nil
	}

	// The payment intent ID is the ledger reference, so the matching
	// payment_intent.succeeded delivery credits nothing extra
	reference := session.ID
	if session.PaymentIntent != nil {
		reference = session.PaymentIntent.ID
	}

	return s.creditTopUp(ctx, workspaceID, session.AmountTotal, string(session.Currency), reference)
}

// handlePaymentIntentSucceeded credits top-up payments that bypassed a
// checkout session delivery, or arrived before it
func (s *StripeWebhookService) handlePaymentIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}

	if intent.Metadata["purpose"] != topUpPurpose {
		return nil
	}

	workspaceID, err := workspaceIDFromMetadata(intent.Metadata)
	if err != nil {
		s.logger.Warn("Top-up payment carries no workspace, skipping",
			zap.String("payment_intent_id", intent.ID))
		return nil
	}

	return s.creditTopUp(ctx, workspaceID, intent.Amount, string(intent.Currency), intent.ID)
}

func (s *StripeWebhookService) creditTopUp(ctx context.Context, workspaceID uuid.UUID, amount int64, currency, reference string) error {
	if amount <= 0 {
		s.logger.Warn("Top-up with non-positive amount, skipping",
			zap.String("workspace_id", workspaceID.String()),
			zap.Int64("amount", amount))
		return nil
	}

	_, err := s.balances.Credit(ctx, CreditInput{
		WorkspaceID:   workspaceID,
		Amount:        amount,
		Currency:      strings.ToUpper(currency),
		ReferenceType: billing.ReferenceTypeStripePayment,
		ReferenceID:   reference,
		Description:   "Balance top-up",
	})
	if err != nil {
		return fmt.Errorf("failed to credit top-up %s: %w", reference, err)
	}

	s.logger.Info("Top-up credited",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int64("amount", amount),
		zap.String("reference", reference))
	return nil
}

// handleSubscriptionChanged upserts the local mirror from the gateway
// snapshot
func (s *StripeWebhookService) handleSubscriptionChanged(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	status := payment.MapStripeSubscriptionStatus(sub.Status)
	periodStart := time.Unix(sub.CurrentPeriodStart, 0)
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)

	mirror, err := s.subscriptionRepo.FindByStripeID(ctx, sub.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to find subscription mirror: %w", err)
		}
		return s.createMirror(ctx, &sub, status, periodStart, periodEnd)
	}

	if err := mirror.SyncFromGateway(status, periodStart, periodEnd, sub.CancelAtPeriodEnd); err != nil {
		return fmt.Errorf("failed to sync subscription mirror: %w", err)
	}
	mirror.IncrementVersion()
	if err := s.subscriptionRepo.Save(ctx, mirror); err != nil {
		return fmt.Errorf("failed to save subscription mirror: %w", err)
	}

	s.invalidateEntitlements(ctx, mirror.WorkspaceID)

	s.logger.Info("Subscription mirror updated",
		zap.String("workspace_id", mirror.WorkspaceID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(status)))
	return nil
}

// createMirror builds the first mirror row for a subscription seen via
// webhook. The workspace comes from the metadata the checkout flow put
// on the gateway subscription; deliveries for unknown customers are
// acknowledged so Stripe stops retrying.
func (s *StripeWebhookService) createMirror(ctx context.Context, sub *stripe.Subscription, status billing.SubscriptionStatus, periodStart, periodEnd time.Time) error {
	workspaceID, err := workspaceIDFromMetadata(sub.Metadata)
	if err != nil {
		s.logger.Warn("Subscription carries no workspace, skipping",
			zap.String("subscription_id", sub.ID))
		return nil
	}

	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Workspace not found for subscription, skipping",
				zap.String("workspace_id", workspaceID.String()),
				zap.String("subscription_id", sub.ID))
			return nil
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	planID := uuid.Nil
	if workspace.PlanID != nil {
		planID = *workspace.PlanID
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	mirror, err := billing.NewSubscription(workspaceID, planID, sub.ID, customerID, status, periodStart, periodEnd)
	if err != nil {
		return fmt.Errorf("failed to build subscription mirror: %w", err)
	}
	mirror.CancelAtPeriodEnd = sub.CancelAtPeriodEnd

	if err := s.subscriptionRepo.Save(ctx, mirror); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent delivery created it first
			return nil
		}
		return fmt.Errorf("failed to save subscription mirror: %w", err)
	}

	s.invalidateEntitlements(ctx, workspaceID)

	s.logger.Info("Subscription mirror created",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(status)))
	return nil
}

func (s *StripeWebhookService) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	mirror, err := s.subscriptionRepo.FindByStripeID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Mirror not found for deleted subscription",
				zap.String("subscription_id", sub.ID))
			return nil
		}
		return fmt.Errorf("failed to find subscription mirror: %w", err)
	}

	at := time.Now()
	if sub.CanceledAt > 0 {
		at = time.Unix(sub.CanceledAt, 0)
	}
	mirror.MarkCanceled(at)
	mirror.IncrementVersion()
	if err := s.subscriptionRepo.Save(ctx, mirror); err != nil {
		return fmt.Errorf("failed to save subscription mirror: %w", err)
	}

	s.invalidateEntitlements(ctx, mirror.WorkspaceID)

	s.logger.Info("Subscription canceled via webhook",
		zap.String("workspace_id", mirror.WorkspaceID.String()),
		zap.String("subscription_id", sub.ID))
	return nil
}

// handleInvoicePaymentFailed flips the mirror to past-due so the
// entitlement check starts refusing service for the workspace
func (s *StripeWebhookService) handleInvoicePaymentFailed(ctx context.Context, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}
	if invoice.Subscription == nil {
		return nil
	}

	mirror, err := s.subscriptionRepo.FindByStripeID(ctx, invoice.Subscription.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Mirror not found for failed invoice",
				zap.String("subscription_id", invoice.Subscription.ID))
			return nil
		}
		return fmt.Errorf("failed to find subscription mirror: %w", err)
	}

	if mirror.Status == billing.SubscriptionStatusCanceled {
		return nil
	}

	if err := mirror.SyncFromGateway(billing.SubscriptionStatusPastDue, mirror.CurrentPeriodStart, mirror.CurrentPeriodEnd, mirror.CancelAtPeriodEnd); err != nil {
		return fmt.Errorf("failed to sync subscription mirror: %w", err)
	}
	mirror.IncrementVersion()
	if err := s.subscriptionRepo.Save(ctx, mirror); err != nil {
		return fmt.Errorf("failed to save subscription mirror: %w", err)
	}

	s.invalidateEntitlements(ctx, mirror.WorkspaceID)

	s.logger.Warn("Invoice payment failed, subscription past due",
		zap.String("workspace_id", mirror.WorkspaceID.String()),
		zap.String("invoice_id", invoice.ID))
	return nil
}

func (s *StripeWebhookService) invalidateEntitlements(ctx context.Context, workspaceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, workspaceID); err != nil {
		s.logger.Warn("Failed to invalidate entitlement cache",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
	}
}

func workspaceIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw, ok := metadata["workspace_id"]
	if !ok || raw == "" {
		return uuid.Nil, shared.ErrNotFound
	}
	return uuid.Parse(raw)
}
