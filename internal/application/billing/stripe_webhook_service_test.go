package billing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/shared"
)

type webhookFixture struct {
	verifier         *MockWebhookVerifier
	idempotency      *MockIdempotencyStore
	workspaceRepo    *MockWorkspaceRepository
	subscriptionRepo *MockSubscriptionRepository
	balanceRepo      *MockBalanceRepository
	txRepo           *MockTransactionRepository
	cache            *MockEntitlementCache
	service          *StripeWebhookService
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		verifier:         new(MockWebhookVerifier),
		idempotency:      new(MockIdempotencyStore),
		workspaceRepo:    new(MockWorkspaceRepository),
		subscriptionRepo: new(MockSubscriptionRepository),
		balanceRepo:      new(MockBalanceRepository),
		txRepo:           new(MockTransactionRepository),
		cache:            new(MockEntitlementCache),
	}
	f.service = NewStripeWebhookService(
		f.verifier,
		f.idempotency,
		f.workspaceRepo,
		f.subscriptionRepo,
		NewBalanceService(f.balanceRepo, f.txRepo, zap.NewNop()),
		f.cache,
		zap.NewNop(),
	)
	return f
}

func stripeEvent(t *testing.T, id string, eventType stripe.EventType, object any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return &stripe.Event{
		ID:   id,
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func (f *webhookFixture) expectVerified(event *stripe.Event) {
	f.verifier.On("VerifyWebhook", mock.Anything, "sig").Return(event, nil)
	f.idempotency.On("MarkProcessed", mock.Anything, event.ID, mock.Anything).Return(true, nil)
}

func TestProcessWebhook_InvalidSignature(t *testing.T) {
	f := newWebhookFixture()
	f.verifier.On("VerifyWebhook", mock.Anything, "bad").Return(nil, assert.AnError)

	_, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "bad")

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_SIGNATURE", de.Code)
}

func TestProcessWebhook_DuplicateDeliveryIgnored(t *testing.T) {
	f := newWebhookFixture()
	event := stripeEvent(t, "evt_1", "payment_intent.succeeded", stripe.PaymentIntent{})
	f.verifier.On("VerifyWebhook", mock.Anything, "sig").Return(event, nil)
	f.idempotency.On("MarkProcessed", mock.Anything, "evt_1", mock.Anything).Return(false, nil)

	result, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "Duplicate event ignored", result.Message)
	f.txRepo.AssertNotCalled(t, "FindByReference", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhook_TopUpPaymentCreditsBalance(t *testing.T) {
	f := newWebhookFixture()
	workspaceID := uuid.New()

	event := stripeEvent(t, "evt_2", "payment_intent.succeeded", map[string]any{
		"id":       "pi_topup",
		"amount":   2500,
		"currency": "usd",
		"metadata": map[string]string{
			"purpose":      "balance_top_up",
			"workspace_id": workspaceID.String(),
		},
	})
	f.expectVerified(event)

	balance := existingBalance(t, workspaceID, 0, 0)
	after := existingBalance(t, workspaceID, 2500, 0)

	f.txRepo.On("FindByReference", mock.Anything, billing.ReferenceTypeStripePayment, "pi_topup").
		Return(nil, shared.ErrNotFound)
	f.balanceRepo.On("FindByWorkspace", mock.Anything, workspaceID).Return(balance, nil)
	f.balanceRepo.On("ApplyDelta", mock.Anything, workspaceID, int64(2500), int64(0), balance.Version).
		Return(after, nil)
	f.txRepo.On("Save", mock.Anything, mock.MatchedBy(func(tx *billing.BalanceTransaction) bool {
		return tx.Type == billing.TransactionTypeCredit &&
			tx.Amount == 2500 &&
			tx.ReferenceID == "pi_topup"
	})).Return(nil)

	result, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	assert.True(t, result.Processed)
	f.balanceRepo.AssertExpectations(t)
	f.txRepo.AssertExpectations(t)
}

func TestProcessWebhook_PaymentWithoutTopUpPurposeIgnored(t *testing.T) {
	f := newWebhookFixture()
	event := stripeEvent(t, "evt_3", "payment_intent.succeeded", map[string]any{
		"id":     "pi_other",
		"amount": 900,
	})
	f.expectVerified(event)

	result, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	assert.True(t, result.Processed)
	f.txRepo.AssertNotCalled(t, "FindByReference", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhook_CheckoutTopUpUsesPaymentIntentReference(t *testing.T) {
	f := newWebhookFixture()
	workspaceID := uuid.New()

	event := stripeEvent(t, "evt_4", "checkout.session.completed", map[string]any{
		"id":             "cs_topup",
		"mode":           "payment",
		"amount_total":   1500,
		"currency":       "usd",
		"payment_intent": map[string]any{"id": "pi_from_session"},
		"metadata": map[string]string{
			"purpose":      "balance_top_up",
			"workspace_id": workspaceID.String(),
		},
	})
	f.expectVerified(event)

	balance := existingBalance(t, workspaceID, 0, 0)
	after := existingBalance(t, workspaceID, 1500, 0)

	// Credited under the payment intent ID so the payment_intent.succeeded
	// delivery for the same payment finds the ledger entry
	f.txRepo.On("FindByReference", mock.Anything, billing.ReferenceTypeStripePayment, "pi_from_session").
		Return(nil, shared.ErrNotFound)
	f.balanceRepo.On("FindByWorkspace", mock.Anything, workspaceID).Return(balance, nil)
	f.balanceRepo.On("ApplyDelta", mock.Anything, workspaceID, int64(1500), int64(0), balance.Version).
		Return(after, nil)
	f.txRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	f.txRepo.AssertExpectations(t)
}

func TestProcessWebhook_SubscriptionUpdatedSyncsMirror(t *testing.T) {
	f := newWebhookFixture()
	workspaceID := uuid.New()
	mirror := newMirror(t, workspaceID)

	periodEnd := time.Now().Add(60 * 24 * time.Hour).Unix()
	event := stripeEvent(t, "evt_5", "customer.subscription.updated", map[string]any{
		"id":                   "sub_123",
		"status":               "past_due",
		"current_period_start": time.Now().Unix(),
		"current_period_end":   periodEnd,
		"cancel_at_period_end": true,
	})
	f.expectVerified(event)

	f.subscriptionRepo.On("FindByStripeID", mock.Anything, "sub_123").Return(mirror, nil)
	f.subscriptionRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.Status == billing.SubscriptionStatusPastDue && s.CancelAtPeriodEnd
	})).Return(nil)
	f.cache.On("Invalidate", mock.Anything, workspaceID).Return(nil)

	_, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	f.subscriptionRepo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestProcessWebhook_SubscriptionCreatedBuildsMirror(t *testing.T) {
	f := newWebhookFixture()
	workspace := newTestWorkspace(t)
	planID := uuid.New()
	workspace.AssignPlan(planID)

	event := stripeEvent(t, "evt_6", "customer.subscription.created", map[string]any{
		"id":                   "sub_new",
		"status":               "active",
		"customer":             map[string]any{"id": "cus_123"},
		"current_period_start": time.Now().Unix(),
		"current_period_end":   time.Now().Add(30 * 24 * time.Hour).Unix(),
		"metadata":             map[string]string{"workspace_id": workspace.ID.String()},
	})
	f.expectVerified(event)

	f.subscriptionRepo.On("FindByStripeID", mock.Anything, "sub_new").Return(nil, shared.ErrNotFound)
	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)
	f.subscriptionRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.WorkspaceID == workspace.ID &&
			s.StripeSubscriptionID == "sub_new" &&
			s.StripeCustomerID == "cus_123" &&
			s.PlanID == planID &&
			s.Status == billing.SubscriptionStatusActive
	})).Return(nil)
	f.cache.On("Invalidate", mock.Anything, workspace.ID).Return(nil)

	_, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	f.subscriptionRepo.AssertExpectations(t)
}

func TestProcessWebhook_SubscriptionForUnknownWorkspaceAcknowledged(t *testing.T) {
	f := newWebhookFixture()

	event := stripeEvent(t, "evt_7", "customer.subscription.created", map[string]any{
		"id":     "sub_orphan",
		"status": "active",
	})
	f.expectVerified(event)

	f.subscriptionRepo.On("FindByStripeID", mock.Anything, "sub_orphan").Return(nil, shared.ErrNotFound)

	result, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	// Acknowledged so the gateway stops redelivering
	require.NoError(t, err)
	assert.True(t, result.Processed)
	f.subscriptionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProcessWebhook_SubscriptionDeletedCancelsMirror(t *testing.T) {
	f := newWebhookFixture()
	workspaceID := uuid.New()
	mirror := newMirror(t, workspaceID)

	event := stripeEvent(t, "evt_8", "customer.subscription.deleted", map[string]any{
		"id":          "sub_123",
		"status":      "canceled",
		"canceled_at": time.Now().Unix(),
	})
	f.expectVerified(event)

	f.subscriptionRepo.On("FindByStripeID", mock.Anything, "sub_123").Return(mirror, nil)
	f.subscriptionRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.Status == billing.SubscriptionStatusCanceled && s.CanceledAt != nil
	})).Return(nil)
	f.cache.On("Invalidate", mock.Anything, workspaceID).Return(nil)

	_, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	f.subscriptionRepo.AssertExpectations(t)
}

func TestProcessWebhook_InvoicePaymentFailedMarksPastDue(t *testing.T) {
	f := newWebhookFixture()
	workspaceID := uuid.New()
	mirror := newMirror(t, workspaceID)

	event := stripeEvent(t, "evt_9", "invoice.payment_failed", map[string]any{
		"id":           "in_1",
		"subscription": map[string]any{"id": "sub_123"},
	})
	f.expectVerified(event)

	f.subscriptionRepo.On("FindByStripeID", mock.Anything, "sub_123").Return(mirror, nil)
	f.subscriptionRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.Status == billing.SubscriptionStatusPastDue
	})).Return(nil)
	f.cache.On("Invalidate", mock.Anything, workspaceID).Return(nil)

	_, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	f.subscriptionRepo.AssertExpectations(t)
}

func TestProcessWebhook_UnhandledEventType(t *testing.T) {
	f := newWebhookFixture()
	event := stripeEvent(t, "evt_10", "charge.refunded", map[string]any{"id": "ch_1"})
	f.expectVerified(event)

	result, err := f.service.ProcessWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	assert.Equal(t, "Event type not handled", result.Message)
}
