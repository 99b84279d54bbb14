package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mailriver/backend/internal/domain/shared"
)

// EventFactory produces a zero value of a concrete event type for
// deserialization to fill in.
type EventFactory func() shared.DomainEvent

// EventSerializer converts domain events to and from their outbox JSON
// payloads. Deserialization needs the concrete type, so every event
// type must be registered with a factory before the outbox processor
// encounters it.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

// NewEventSerializer creates a new event serializer
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{
		factories: make(map[string]EventFactory),
	}
}

// Register binds an event type name to its factory. The name must match
// what EventType() returns on the produced event.
func (s *EventSerializer) Register(eventType string, factory EventFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

// Serialize serializes a domain event to JSON bytes
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize reconstructs a domain event from its outbox payload
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes returns all registered event types
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	return types
}
