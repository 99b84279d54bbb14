package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// SubscriptionStatus mirrors the gateway subscription lifecycle
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusTrialing SubscriptionStatus = "TRIALING"
	SubscriptionStatusUnpaid   SubscriptionStatus = "UNPAID"
)

// IsValid checks if the status is a valid SubscriptionStatus
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusCanceled,
		SubscriptionStatusTrialing, SubscriptionStatusUnpaid:
		return true
	}
	return false
}

// Grants returns true when the status entitles the workspace to its plan
// features
func (s SubscriptionStatus) Grants() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// Subscription is the local mirror of a payment-gateway subscription. The
// gateway is the source of truth; webhook events keep this row in step.
type Subscription struct {
	shared.WorkspaceAggregateRoot
	PlanID               uuid.UUID
	StripeSubscriptionID string
	StripeCustomerID     string
	Status               SubscriptionStatus
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
	CanceledAt           *time.Time
}

// NewSubscription creates a subscription mirror row
func NewSubscription(
	workspaceID, planID uuid.UUID,
	stripeSubscriptionID, stripeCustomerID string,
	status SubscriptionStatus,
	periodStart, periodEnd time.Time,
) (*Subscription, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if stripeSubscriptionID == "" {
		return nil, shared.NewDomainError("INVALID_SUBSCRIPTION", "Gateway subscription ID cannot be empty")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid subscription status: %s", status))
	}
	return &Subscription{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		PlanID:                 planID,
		StripeSubscriptionID:   stripeSubscriptionID,
		StripeCustomerID:       stripeCustomerID,
		Status:                 status,
		CurrentPeriodStart:     periodStart,
		CurrentPeriodEnd:       periodEnd,
	}, nil
}

// SyncFromGateway applies a webhook snapshot of the gateway state
func (s *Subscription) SyncFromGateway(status SubscriptionStatus, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid subscription status: %s", status))
	}
	s.Status = status
	s.CurrentPeriodStart = periodStart
	s.CurrentPeriodEnd = periodEnd
	s.CancelAtPeriodEnd = cancelAtPeriodEnd
	s.UpdatedAt = time.Now()
	return nil
}

// MarkCanceled records a gateway-side cancellation
func (s *Subscription) MarkCanceled(at time.Time) {
	s.Status = SubscriptionStatusCanceled
	s.CanceledAt = &at
	s.UpdatedAt = time.Now()
}

// IsActive returns true when the subscription grants plan entitlements
func (s *Subscription) IsActive() bool {
	return s.Status.Grants()
}
