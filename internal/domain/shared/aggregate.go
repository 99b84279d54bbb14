package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots. Pending
// domain events accumulate here until the repository hands them to the
// outbox alongside the aggregate write.
type BaseAggregateRoot struct {
	BaseEntity
	Version int           `gorm:"not null;default:1"`
	events  []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
		events:     make([]DomainEvent, 0),
	}
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent records a domain event for publication with the next save
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// WorkspaceAggregateRoot extends BaseAggregateRoot with workspace scoping.
// Every customer-owned aggregate carries the owning workspace ID.
type WorkspaceAggregateRoot struct {
	BaseAggregateRoot
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// NewWorkspaceAggregateRoot creates a new workspace-scoped aggregate root
func NewWorkspaceAggregateRoot(workspaceID uuid.UUID) WorkspaceAggregateRoot {
	return WorkspaceAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		WorkspaceID:       workspaceID,
	}
}
