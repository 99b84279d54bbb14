package event

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/shared"
)

// OutboxPublisher writes domain events into the outbox table so they
// commit or roll back together with the aggregate that raised them.
type OutboxPublisher struct {
	serializer *EventSerializer
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx serializes the events and stores them as outbox entries
// within the provided transaction.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, len(events))
	for i, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries[i] = shared.NewOutboxEntry(event.WorkspaceID(), event, payload)
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver for callers that carry
// the transaction as an opaque provider.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}
