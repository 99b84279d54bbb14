package event

import (
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/shared"
)

// RegisterAllEvents registers every domain event type with the
// serializer. The OutboxProcessor cannot deliver an event type that is
// missing here.
func RegisterAllEvents(serializer *EventSerializer) {
	// Forwarding lifecycle events
	serializer.Register(forwarding.EventTypeRequestCreated, func() shared.DomainEvent { return &forwarding.RequestCreatedEvent{} })
	serializer.Register(forwarding.EventTypeLabelPurchased, func() shared.DomainEvent { return &forwarding.LabelPurchasedEvent{} })
	serializer.Register(forwarding.EventTypeRequestCompleted, func() shared.DomainEvent { return &forwarding.RequestCompletedEvent{} })
	serializer.Register(forwarding.EventTypeRequestCancelled, func() shared.DomainEvent { return &forwarding.RequestCancelledEvent{} })

	// Outbox tasks
	serializer.Register(forwarding.EventTypeChargeDue, func() shared.DomainEvent { return &forwarding.ChargeDueEvent{} })
}
