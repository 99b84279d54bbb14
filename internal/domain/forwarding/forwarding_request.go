package forwarding

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// RequestStatus represents the lifecycle status of a forwarding request
type RequestStatus string

const (
	// RequestStatusPending is the write-ahead intent: the row exists but no
	// label has been purchased yet
	RequestStatusPending RequestStatus = "PENDING"
	// RequestStatusLabelPurchased means the gateway label purchase succeeded
	RequestStatusLabelPurchased RequestStatus = "LABEL_PURCHASED"
	RequestStatusCompleted      RequestStatus = "COMPLETED"
	RequestStatusCancelled      RequestStatus = "CANCELLED"
	// RequestStatusFailed records a purchase that never happened (rate gone,
	// price drift, gateway error), keeping an auditable trail
	RequestStatusFailed RequestStatus = "FAILED"
)

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusLabelPurchased, RequestStatusCompleted,
		RequestStatusCancelled, RequestStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true for states that permit no further transitions
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled || s == RequestStatusFailed
}

// PaymentStatus represents the billing status of a forwarding request
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Priority represents handling priority for operations staff
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// RateSelection identifies one priced shipping option from the gateway.
// Carrier+service is treated as the stable identity of a shipping product;
// the literal rate ID is single-use and tied to one shipment instance.
type RateSelection struct {
	RateID   string
	Carrier  string
	Service  string
	Fee      int64 // minor currency units
	Currency string
}

// Validate checks the selection carries everything a purchase needs
func (r RateSelection) Validate() error {
	if r.Carrier == "" || r.Service == "" {
		return shared.NewDomainError("INVALID_RATE", "Selected rate must include carrier and service")
	}
	if r.Fee < 0 {
		return shared.NewDomainError("INVALID_RATE", "Selected rate fee cannot be negative")
	}
	return nil
}

// CostBreakdown is the itemized charge of a forwarding request.
// Total always equals the sum of the four components.
type CostBreakdown struct {
	BaseShippingCost int64
	SpeedFee         int64
	PackagingFee     int64
	ServiceFee       int64
	Total            int64
}

// NewCostBreakdown composes the itemized cost. The total is derived, never
// supplied, so the sum invariant holds by construction.
func NewCostBreakdown(baseShipping, speedFee, packagingFee, serviceFee int64) (CostBreakdown, error) {
	if baseShipping < 0 || speedFee < 0 || packagingFee < 0 || serviceFee < 0 {
		return CostBreakdown{}, shared.NewDomainError("INVALID_COST", "Cost components cannot be negative")
	}
	return CostBreakdown{
		BaseShippingCost: baseShipping,
		SpeedFee:         speedFee,
		PackagingFee:     packagingFee,
		ServiceFee:       serviceFee,
		Total:            baseShipping + speedFee + packagingFee + serviceFee,
	}, nil
}

// ForwardingRequest is the transactional record of one forward-mail action.
// It is created as a PENDING intent before the label purchase and updated
// with the gateway identifiers once the purchase succeeds.
type ForwardingRequest struct {
	shared.WorkspaceAggregateRoot
	MailItemID        uuid.UUID
	MailboxID         uuid.UUID
	OfficeLocationID  uuid.UUID
	DeliveryAddressID uuid.UUID
	SpeedOptionID     *uuid.UUID
	PackagingOptionID *uuid.UUID

	SelectedRate RateSelection
	Cost         CostBreakdown

	GatewayShipmentID string
	GatewayRateID     string
	Carrier           string
	Service           string
	TrackingCode      string
	LabelURL          string
	RawRateDetails    []byte // verbatim gateway rate payload, kept for audit

	Status        RequestStatus
	PaymentStatus PaymentStatus
	Priority      Priority
	FailureReason string
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// NewForwardingRequest creates the write-ahead PENDING intent row
func NewForwardingRequest(
	workspaceID, mailItemID, mailboxID, officeLocationID, deliveryAddressID uuid.UUID,
	speedOptionID, packagingOptionID *uuid.UUID,
	selectedRate RateSelection,
	cost CostBreakdown,
	priority Priority,
) (*ForwardingRequest, error) {
	if mailItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MAIL_ITEM", "Mail item ID cannot be empty")
	}
	if mailboxID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MAILBOX", "Mailbox ID cannot be empty")
	}
	if deliveryAddressID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Delivery address ID cannot be empty")
	}
	if err := selectedRate.Validate(); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityNormal
	}

	req := &ForwardingRequest{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		MailItemID:             mailItemID,
		MailboxID:              mailboxID,
		OfficeLocationID:       officeLocationID,
		DeliveryAddressID:      deliveryAddressID,
		SpeedOptionID:          speedOptionID,
		PackagingOptionID:      packagingOptionID,
		SelectedRate:           selectedRate,
		Cost:                   cost,
		Carrier:                selectedRate.Carrier,
		Service:                selectedRate.Service,
		Status:                 RequestStatusPending,
		PaymentStatus:          PaymentStatusPending,
		Priority:               priority,
	}
	req.AddDomainEvent(NewRequestCreatedEvent(req))
	return req, nil
}

// AttachLabel records a successful label purchase
func (r *ForwardingRequest) AttachLabel(shipmentID, rateID, trackingCode, labelURL string, rawRate []byte) error {
	if r.Status != RequestStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot attach a label to a %s request", r.Status))
	}
	r.GatewayShipmentID = shipmentID
	r.GatewayRateID = rateID
	r.TrackingCode = trackingCode
	r.LabelURL = labelURL
	r.RawRateDetails = rawRate
	r.Status = RequestStatusLabelPurchased
	r.UpdatedAt = time.Now()
	r.AddDomainEvent(NewLabelPurchasedEvent(r))
	return nil
}

// MarkFailed records a purchase that did not happen and the reason why
func (r *ForwardingRequest) MarkFailed(reason string) error {
	if r.Status != RequestStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot fail a %s request", r.Status))
	}
	r.Status = RequestStatusFailed
	r.FailureReason = reason
	r.UpdatedAt = time.Now()
	return nil
}

// Complete marks the request as fulfilled. COMPLETED is terminal.
func (r *ForwardingRequest) Complete() error {
	if r.Status == RequestStatusCompleted {
		return shared.NewDomainError("ALREADY_COMPLETED", "Forwarding request is already completed")
	}
	if r.Status == RequestStatusCancelled || r.Status == RequestStatusFailed {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete a %s request", r.Status))
	}
	now := time.Now()
	r.Status = RequestStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewRequestCompletedEvent(r))
	return nil
}

// Cancel cancels the request. Completed requests cannot be cancelled; any
// other non-terminal status can.
func (r *ForwardingRequest) Cancel() error {
	if r.Status == RequestStatusCompleted {
		return shared.NewDomainError("CANNOT_CANCEL_COMPLETED", "Cannot cancel a completed forwarding request")
	}
	if r.Status == RequestStatusCancelled || r.Status == RequestStatusFailed {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel a %s request", r.Status))
	}
	now := time.Now()
	r.Status = RequestStatusCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewRequestCancelledEvent(r))
	return nil
}

// MarkPaid records a successful balance charge for this request
func (r *ForwardingRequest) MarkPaid() {
	r.PaymentStatus = PaymentStatusPaid
	r.UpdatedAt = time.Now()
}

// HasTracking returns true when a tracking code has been assigned
func (r *ForwardingRequest) HasTracking() bool {
	return r.TrackingCode != ""
}
