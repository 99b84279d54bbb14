package event

import (
	"slices"
	"sync"

	"github.com/mailriver/backend/internal/domain/shared"
)

// wildcardType is the registry key for handlers that receive every event.
const wildcardType = "*"

// HandlerRegistry maps event types to their subscribed handlers.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Register adds a handler for the given event types. With no types the
// handler becomes a wildcard and receives all events.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		eventTypes = []string{wildcardType}
	}
	for _, eventType := range eventTypes {
		r.handlers[eventType] = append(r.handlers[eventType], handler)
	}
}

// Unregister removes a handler from every event type it subscribed to.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, handlers := range r.handlers {
		kept := slices.DeleteFunc(slices.Clone(handlers), func(h shared.EventHandler) bool {
			return h == handler
		})
		if len(kept) == 0 {
			delete(r.handlers, eventType)
			continue
		}
		r.handlers[eventType] = kept
	}
}

// GetHandlers returns the handlers subscribed to an event type,
// wildcard subscribers included.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	wild := r.handlers[wildcardType]

	result := make([]shared.EventHandler, 0, len(typed)+len(wild))
	result = append(result, typed...)
	result = append(result, wild...)
	return result
}

// GetAllHandlers returns every registered handler once.
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]shared.EventHandler, 0)
	for _, handlers := range r.handlers {
		for _, handler := range handlers {
			if !slices.Contains(result, handler) {
				result = append(result, handler)
			}
		}
	}
	return result
}
