package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/billing"
)

// CreateCustomerInput contains input for creating a Stripe customer
type CreateCustomerInput struct {
	WorkspaceID uuid.UUID
	Email       string
	Name        string
	Metadata    map[string]string
}

// CreateCustomerOutput contains the result of creating a Stripe customer
type CreateCustomerOutput struct {
	CustomerID string
	Email      string
	Name       string
	CreatedAt  time.Time
}

// SubscriptionCheckoutInput starts a hosted checkout for a plan subscription
type SubscriptionCheckoutInput struct {
	WorkspaceID uuid.UUID
	CustomerID  string
	PriceID     string // Stripe Price ID of the plan
	TrialDays   int
	Metadata    map[string]string
}

// TopUpCheckoutInput starts a hosted checkout for a one-time balance top-up
type TopUpCheckoutInput struct {
	WorkspaceID uuid.UUID
	CustomerID  string
	Amount      int64 // minor currency units
	Currency    string
	Description string
}

// CheckoutSessionOutput is the hosted checkout handle returned to the client
type CheckoutSessionOutput struct {
	SessionID string
	URL       string
}

// PortalSessionOutput is the hosted billing portal handle
type PortalSessionOutput struct {
	URL string
}

// SubscriptionState is the gateway-side snapshot of a subscription
type SubscriptionState struct {
	SubscriptionID     string
	CustomerID         string
	PriceID            string
	Status             billing.SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time
}

// CancelSubscriptionInput contains input for canceling a Stripe subscription
type CancelSubscriptionInput struct {
	WorkspaceID       uuid.UUID
	SubscriptionID    string
	CancelAtPeriodEnd bool
	Reason            string
}

// ChangePlanInput moves a subscription to a different plan price
type ChangePlanInput struct {
	WorkspaceID    uuid.UUID
	SubscriptionID string
	NewPriceID     string
	// ProrationBehavior is "create_prorations", "none", or "always_invoice"
	ProrationBehavior string
}
