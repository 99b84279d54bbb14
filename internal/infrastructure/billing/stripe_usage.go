// Package billing reports metered usage to Stripe. Subscription
// lifecycle (checkout, webhooks, plan changes) lives in the payment
// package; this package only pushes per-period usage counters against
// subscription items.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/usagerecord"
	"go.uber.org/zap"
)

// UsageReportInput contains input for reporting usage to Stripe
type UsageReportInput struct {
	WorkspaceID        uuid.UUID // The workspace this usage belongs to
	SubscriptionItemID string    // Stripe subscription item ID (si_xxx)
	Quantity           int64     // Amount of usage to report
	Timestamp          time.Time // When the usage occurred (optional, defaults to now)
	Action             string    // "increment" (default) or "set"
	IdempotencyKey     string    // Optional idempotency key for deduplication
}

// UsageReportOutput contains the result of reporting usage to Stripe
type UsageReportOutput struct {
	UsageRecordID      string    // Stripe usage record ID
	SubscriptionItemID string    // Stripe subscription item ID
	Quantity           int64     // Reported quantity
	Timestamp          time.Time // When the usage was recorded
	Action             string    // Action taken ("increment" or "set")
}

// StripeUsageReporter pushes usage records to Stripe's metered billing
// API
type StripeUsageReporter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeUsageReporter creates a usage reporter and initializes the
// Stripe client with the configured key
func NewStripeUsageReporter(config *StripeConfig, logger *zap.Logger) (*StripeUsageReporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeUsageReporter{
		config: config,
		logger: logger,
	}, nil
}

// ReportUsage reports usage to Stripe for metered billing
func (r *StripeUsageReporter) ReportUsage(ctx context.Context, input UsageReportInput) (*UsageReportOutput, error) {
	r.logger.Debug("Reporting usage to Stripe",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("subscription_item_id", input.SubscriptionItemID),
		zap.Int64("quantity", input.Quantity))

	if input.SubscriptionItemID == "" {
		return nil, fmt.Errorf("stripe: subscription item ID is required")
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("stripe: quantity cannot be negative")
	}

	params := &stripe.UsageRecordParams{
		SubscriptionItem: stripe.String(input.SubscriptionItemID),
		Quantity:         stripe.Int64(input.Quantity),
	}

	if !input.Timestamp.IsZero() {
		params.Timestamp = stripe.Int64(input.Timestamp.Unix())
	}

	// Default to increment
	action := input.Action
	if action == "" {
		action = "increment"
	}
	params.Action = stripe.String(action)

	if input.IdempotencyKey != "" {
		params.SetIdempotencyKey(input.IdempotencyKey)
	}

	record, err := usagerecord.New(params)
	if err != nil {
		r.logger.Error("Failed to report usage to Stripe",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.String("subscription_item_id", input.SubscriptionItemID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to report usage: %w", err)
	}

	r.logger.Info("Reported usage to Stripe",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("usage_record_id", record.ID),
		zap.String("subscription_item_id", record.SubscriptionItem),
		zap.Int64("quantity", record.Quantity))

	return &UsageReportOutput{
		UsageRecordID:      record.ID,
		SubscriptionItemID: record.SubscriptionItem,
		Quantity:           record.Quantity,
		Timestamp:          time.Unix(record.Timestamp, 0),
		Action:             action,
	}, nil
}

// GetSubscriptionItemID retrieves the subscription item ID for a given
// subscription. Usage records are reported against subscription items,
// not subscriptions. Assumes a single-item subscription.
func (r *StripeUsageReporter) GetSubscriptionItemID(ctx context.Context, subscriptionID string) (string, error) {
	r.logger.Debug("Getting subscription item ID",
		zap.String("subscription_id", subscriptionID))

	params := &stripe.SubscriptionParams{}
	params.AddExpand("items")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to get subscription: %w", err)
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return "", fmt.Errorf("stripe: subscription has no items")
	}

	return sub.Items.Data[0].ID, nil
}

// GenerateIdempotencyKey builds the deterministic key for one usage
// report. The period anchor in the timestamp keeps re-runs of the same
// reporting pass from double-counting.
func GenerateIdempotencyKey(workspaceID uuid.UUID, subscriptionItemID, featureCode string, timestamp time.Time) string {
	// Format: workspace_id:subscription_item_id:feature_code:timestamp_unix
	return fmt.Sprintf("%s:%s:%s:%d",
		workspaceID.String(),
		subscriptionItemID,
		featureCode,
		timestamp.Unix(),
	)
}
