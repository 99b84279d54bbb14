package forwarding

import (
	"github.com/mailriver/backend/internal/domain/shared"
)

const (
	EventTypeRequestCreated   = "forwarding.request.created"
	EventTypeLabelPurchased   = "forwarding.label.purchased"
	EventTypeRequestCompleted = "forwarding.request.completed"
	EventTypeRequestCancelled = "forwarding.request.cancelled"
	EventTypeChargeDue        = "forwarding.charge.due"
)

// RequestCreatedEvent is raised when the PENDING intent row is created
type RequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID  string `json:"request_id"`
	MailItemID string `json:"mail_item_id"`
	TotalCost  int64  `json:"total_cost"`
}

func NewRequestCreatedEvent(r *ForwardingRequest) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCreated, "ForwardingRequest", r.ID, r.WorkspaceID),
		RequestID:       r.ID.String(),
		MailItemID:      r.MailItemID.String(),
		TotalCost:       r.Cost.Total,
	}
}

// LabelPurchasedEvent is raised when the gateway purchase succeeds
type LabelPurchasedEvent struct {
	shared.BaseDomainEvent
	RequestID    string `json:"request_id"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
	TrackingCode string `json:"tracking_code"`
}

func NewLabelPurchasedEvent(r *ForwardingRequest) *LabelPurchasedEvent {
	return &LabelPurchasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLabelPurchased, "ForwardingRequest", r.ID, r.WorkspaceID),
		RequestID:       r.ID.String(),
		Carrier:         r.Carrier,
		Service:         r.Service,
		TrackingCode:    r.TrackingCode,
	}
}

// RequestCompletedEvent is raised when operations staff complete a request
type RequestCompletedEvent struct {
	shared.BaseDomainEvent
	RequestID string `json:"request_id"`
}

func NewRequestCompletedEvent(r *ForwardingRequest) *RequestCompletedEvent {
	return &RequestCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCompleted, "ForwardingRequest", r.ID, r.WorkspaceID),
		RequestID:       r.ID.String(),
	}
}

// RequestCancelledEvent is raised when a request is cancelled
type RequestCancelledEvent struct {
	shared.BaseDomainEvent
	RequestID string `json:"request_id"`
}

func NewRequestCancelledEvent(r *ForwardingRequest) *RequestCancelledEvent {
	return &RequestCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCancelled, "ForwardingRequest", r.ID, r.WorkspaceID),
		RequestID:       r.ID.String(),
	}
}

// ChargeDueEvent is the outbox task for the deferred balance deduction.
// The request ID doubles as the idempotency key so a retried task never
// double-charges.
type ChargeDueEvent struct {
	shared.BaseDomainEvent
	RequestID   string `json:"request_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

func NewChargeDueEvent(r *ForwardingRequest, description string) *ChargeDueEvent {
	return &ChargeDueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargeDue, "ForwardingRequest", r.ID, r.WorkspaceID),
		RequestID:       r.ID.String(),
		Amount:          r.Cost.Total,
		Currency:        r.SelectedRate.Currency,
		Description:     description,
	}
}
