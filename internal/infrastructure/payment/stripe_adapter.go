package payment

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
)

// StripeAdapter implements Stripe billing operations: customers, plan
// subscriptions via hosted checkout, one-time balance top-ups, and the
// billing portal
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCustomer creates a new customer in Stripe
func (a *StripeAdapter) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CreateCustomerOutput, error) {
	a.logger.Debug("Creating Stripe customer",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("email", input.Email))

	params := &stripe.CustomerParams{
		Email: stripe.String(input.Email),
		Name:  stripe.String(input.Name),
	}
	params.Metadata = map[string]string{
		"workspace_id": input.WorkspaceID.String(),
	}
	maps.Copy(params.Metadata, input.Metadata)

	cust, err := customer.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	a.logger.Info("Created Stripe customer",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("customer_id", cust.ID))

	return &CreateCustomerOutput{
		CustomerID: cust.ID,
		Email:      cust.Email,
		Name:       cust.Name,
		CreatedAt:  time.Unix(cust.Created, 0),
	}, nil
}

// CreateSubscriptionCheckout starts a hosted checkout session that
// subscribes the workspace to a plan price
func (a *StripeAdapter) CreateSubscriptionCheckout(ctx context.Context, input SubscriptionCheckoutInput) (*CheckoutSessionOutput, error) {
	a.logger.Debug("Creating subscription checkout",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("price_id", input.PriceID))

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(input.CustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(a.config.SuccessURL),
		CancelURL:  stripe.String(a.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	subData := &stripe.CheckoutSessionSubscriptionDataParams{
		Metadata: map[string]string{
			"workspace_id": input.WorkspaceID.String(),
		},
	}
	maps.Copy(subData.Metadata, input.Metadata)
	if input.TrialDays > 0 {
		subData.TrialPeriodDays = stripe.Int64(int64(input.TrialDays))
	}
	params.SubscriptionData = subData

	sess, err := checkoutsession.New(params)
	if err != nil {
		a.logger.Error("Failed to create subscription checkout",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	return &CheckoutSessionOutput{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreateTopUpCheckout starts a hosted checkout session for a one-time
// balance top-up payment
func (a *StripeAdapter) CreateTopUpCheckout(ctx context.Context, input TopUpCheckoutInput) (*CheckoutSessionOutput, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("stripe: top-up amount must be positive")
	}
	currency := input.Currency
	if currency == "" {
		currency = a.config.DefaultCurrency
	}
	description := input.Description
	if description == "" {
		description = "Account balance top-up"
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(input.CustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(a.config.SuccessURL),
		CancelURL:  stripe.String(a.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(input.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"workspace_id": input.WorkspaceID.String(),
			"purpose":      "balance_top_up",
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"workspace_id": input.WorkspaceID.String(),
				"purpose":      "balance_top_up",
			},
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		a.logger.Error("Failed to create top-up checkout",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	return &CheckoutSessionOutput{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession opens the hosted billing portal for a customer
func (a *StripeAdapter) CreatePortalSession(ctx context.Context, customerID string) (*PortalSessionOutput, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(a.config.BillingPortalReturnURL),
	}

	sess, err := portalsession.New(params)
	if err != nil {
		a.logger.Error("Failed to create billing portal session",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create portal session: %w", err)
	}

	return &PortalSessionOutput{URL: sess.URL}, nil
}

// GetSubscription retrieves the current state of a subscription
func (a *StripeAdapter) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionState, error) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		a.logger.Error("Failed to get Stripe subscription",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get subscription: %w", err)
	}

	return toSubscriptionState(sub), nil
}

// ChangePlan moves a subscription onto a new plan price
func (a *StripeAdapter) ChangePlan(ctx context.Context, input ChangePlanInput) (*SubscriptionState, error) {
	a.logger.Debug("Changing subscription plan",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("subscription_id", input.SubscriptionID),
		zap.String("new_price_id", input.NewPriceID))

	sub, err := subscription.Get(input.SubscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to get subscription: %w", err)
	}
	if len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("stripe: subscription has no items")
	}
	itemID := sub.Items.Data[0].ID

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(input.NewPriceID),
			},
		},
	}
	if input.ProrationBehavior != "" {
		params.ProrationBehavior = stripe.String(input.ProrationBehavior)
	} else {
		params.ProrationBehavior = stripe.String("create_prorations")
	}

	updated, err := subscription.Update(input.SubscriptionID, params)
	if err != nil {
		a.logger.Error("Failed to change subscription plan",
			zap.String("subscription_id", input.SubscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to update subscription: %w", err)
	}

	a.logger.Info("Changed subscription plan",
		zap.String("subscription_id", updated.ID),
		zap.String("new_price_id", input.NewPriceID))

	return toSubscriptionState(updated), nil
}

// CancelSubscription cancels a subscription immediately or at period end
func (a *StripeAdapter) CancelSubscription(ctx context.Context, input CancelSubscriptionInput) (*SubscriptionState, error) {
	a.logger.Debug("Canceling Stripe subscription",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("subscription_id", input.SubscriptionID),
		zap.Bool("cancel_at_period_end", input.CancelAtPeriodEnd))

	var sub *stripe.Subscription
	var err error

	if input.CancelAtPeriodEnd {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		if input.Reason != "" {
			params.CancellationDetails = &stripe.SubscriptionCancellationDetailsParams{
				Comment: stripe.String(input.Reason),
			}
		}
		sub, err = subscription.Update(input.SubscriptionID, params)
	} else {
		params := &stripe.SubscriptionCancelParams{}
		if input.Reason != "" {
			params.CancellationDetails = &stripe.SubscriptionCancelCancellationDetailsParams{
				Comment: stripe.String(input.Reason),
			}
		}
		sub, err = subscription.Cancel(input.SubscriptionID, params)
	}

	if err != nil {
		a.logger.Error("Failed to cancel Stripe subscription",
			zap.String("subscription_id", input.SubscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}

	a.logger.Info("Canceled Stripe subscription",
		zap.String("subscription_id", sub.ID),
		zap.Bool("cancel_at_period_end", sub.CancelAtPeriodEnd))

	return toSubscriptionState(sub), nil
}

// ResumeSubscription clears a pending cancel-at-period-end so the
// subscription keeps renewing
func (a *StripeAdapter) ResumeSubscription(ctx context.Context, workspaceID uuid.UUID, subscriptionID string) (*SubscriptionState, error) {
	a.logger.Debug("Resuming Stripe subscription",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("subscription_id", subscriptionID))

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}
	sub, err := subscription.Update(subscriptionID, params)
	if err != nil {
		a.logger.Error("Failed to resume Stripe subscription",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to resume subscription: %w", err)
	}

	return toSubscriptionState(sub), nil
}

// VerifyWebhook checks the signature of an incoming webhook payload and
// returns the parsed event
func (a *StripeAdapter) VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, a.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: webhook signature verification failed: %w", err)
	}
	return &event, nil
}

// toSubscriptionState converts a Stripe subscription to the local snapshot
func toSubscriptionState(sub *stripe.Subscription) *SubscriptionState {
	state := &SubscriptionState{
		SubscriptionID:     sub.ID,
		Status:             MapStripeSubscriptionStatus(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		state.CustomerID = sub.Customer.ID
	}
	if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		state.PriceID = sub.Items.Data[0].Price.ID
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0)
		state.CanceledAt = &t
	}
	return state
}

// MapStripeSubscriptionStatus maps Stripe subscription status to the
// domain status. Stripe's incomplete states count as unpaid here; paused
// maps to past-due since the workspace keeps its data but loses
// entitlements.
func MapStripeSubscriptionStatus(status stripe.SubscriptionStatus) billing.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return billing.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return billing.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusPaused:
		return billing.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return billing.SubscriptionStatusCanceled
	case stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncomplete:
		return billing.SubscriptionStatusUnpaid
	default:
		return billing.SubscriptionStatusUnpaid
	}
}
