package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	requestCreatedType   = "forwarding.request.created"
	requestCompletedType = "forwarding.request.completed"
	mailReceivedType     = "mail.item.received"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newCaptureHandler(requestCreatedType, requestCompletedType)

	registry.Register(handler, requestCreatedType, requestCompletedType)

	created := registry.GetHandlers(requestCreatedType)
	assert.Len(t, created, 1)
	assert.Equal(t, handler, created[0])

	completed := registry.GetHandlers(requestCompletedType)
	assert.Len(t, completed, 1)

	assert.Empty(t, registry.GetHandlers(mailReceivedType))
}

func TestHandlerRegistry_Register_EmptyTypesMeansWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newCaptureHandler()

	registry.Register(handler)

	assert.Len(t, registry.GetHandlers(requestCreatedType), 1)
	assert.Len(t, registry.GetHandlers(mailReceivedType), 1)
}

func TestHandlerRegistry_TypedBeforeWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newCaptureHandler(requestCreatedType)
	catchAll := newCaptureHandler()

	registry.Register(catchAll)
	registry.Register(typed, requestCreatedType)

	handlers := registry.GetHandlers(requestCreatedType)
	assert.Len(t, handlers, 2)
	assert.Equal(t, typed, handlers[0], "typed handlers run before wildcard ones")
	assert.Equal(t, catchAll, handlers[1])

	other := registry.GetHandlers(mailReceivedType)
	assert.Len(t, other, 1)
	assert.Equal(t, catchAll, other[0])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newCaptureHandler(requestCreatedType)
	second := newCaptureHandler(requestCreatedType)

	registry.Register(first, requestCreatedType)
	registry.Register(second, requestCreatedType)
	assert.Len(t, registry.GetHandlers(requestCreatedType), 2)

	registry.Unregister(first)

	remaining := registry.GetHandlers(requestCreatedType)
	assert.Len(t, remaining, 1)
	assert.Equal(t, second, remaining[0])
}

func TestHandlerRegistry_Unregister_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	catchAll := newCaptureHandler()

	registry.Register(catchAll)
	assert.Len(t, registry.GetHandlers(mailReceivedType), 1)

	registry.Unregister(catchAll)

	assert.Empty(t, registry.GetHandlers(mailReceivedType))
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	created := newCaptureHandler(requestCreatedType)
	received := newCaptureHandler(mailReceivedType)
	catchAll := newCaptureHandler()

	registry.Register(created, requestCreatedType)
	registry.Register(received, mailReceivedType)
	registry.Register(catchAll)

	assert.Len(t, registry.GetAllHandlers(), 3)
}

func TestHandlerRegistry_GetAllHandlers_DeduplicatesAcrossTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newCaptureHandler(requestCreatedType, requestCompletedType)

	registry.Register(handler, requestCreatedType, requestCompletedType)

	assert.Len(t, registry.GetAllHandlers(), 1)
}
