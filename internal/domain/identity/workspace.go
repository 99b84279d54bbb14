package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// WorkspaceStatus represents the lifecycle status of a workspace
type WorkspaceStatus string

const (
	WorkspaceStatusActive    WorkspaceStatus = "ACTIVE"
	WorkspaceStatusSuspended WorkspaceStatus = "SUSPENDED"
	WorkspaceStatusDeleted   WorkspaceStatus = "DELETED"
)

// IsValid checks if the status is a valid WorkspaceStatus
func (s WorkspaceStatus) IsValid() bool {
	switch s {
	case WorkspaceStatusActive, WorkspaceStatusSuspended, WorkspaceStatusDeleted:
		return true
	}
	return false
}

// Workspace is the tenant of the system: the billing and ownership boundary
// for mailboxes, mail items, addresses, and balances.
type Workspace struct {
	shared.BaseAggregateRoot
	Name             string
	Slug             string
	Status           WorkspaceStatus
	PlanID           *uuid.UUID
	StripeCustomerID string
	DeletedAt        *time.Time
}

// NewWorkspace creates a new active workspace
func NewWorkspace(name, slug string) (*Workspace, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Workspace slug cannot be empty")
	}

	return &Workspace{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Status:            WorkspaceStatusActive,
	}, nil
}

// Rename changes the display name. The slug is permanent.
func (w *Workspace) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	w.Name = name
	w.UpdatedAt = time.Now()
	return nil
}

// AssignPlan sets the subscription plan for the workspace
func (w *Workspace) AssignPlan(planID uuid.UUID) {
	w.PlanID = &planID
	w.UpdatedAt = time.Now()
}

// SetStripeCustomer records the payment processor customer reference
func (w *Workspace) SetStripeCustomer(customerID string) {
	w.StripeCustomerID = customerID
	w.UpdatedAt = time.Now()
}

// Suspend suspends the workspace
func (w *Workspace) Suspend() error {
	if w.Status == WorkspaceStatusDeleted {
		return shared.ErrInvalidState
	}
	w.Status = WorkspaceStatusSuspended
	w.UpdatedAt = time.Now()
	return nil
}

// Activate reactivates a suspended workspace
func (w *Workspace) Activate() error {
	if w.Status == WorkspaceStatusDeleted {
		return shared.ErrInvalidState
	}
	w.Status = WorkspaceStatusActive
	w.UpdatedAt = time.Now()
	return nil
}

// SoftDelete marks the workspace as deleted
func (w *Workspace) SoftDelete() error {
	if w.Status == WorkspaceStatusDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Workspace is already deleted")
	}
	now := time.Now()
	w.Status = WorkspaceStatusDeleted
	w.DeletedAt = &now
	w.UpdatedAt = now
	return nil
}

// IsActive returns true if the workspace is active
func (w *Workspace) IsActive() bool {
	return w.Status == WorkspaceStatusActive
}
