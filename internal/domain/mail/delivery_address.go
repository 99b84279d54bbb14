package mail

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/domain/shared/valueobject"
)

// DeliveryAddress is a workspace-owned destination address for forwarded
// shipments. Once referenced by a forwarding request the address fields are
// frozen; only soft-delete is permitted.
type DeliveryAddress struct {
	shared.WorkspaceAggregateRoot
	Label     string
	Address   valueobject.Address
	IsDefault bool
	DeletedAt *time.Time
}

// NewDeliveryAddress creates a new delivery address
func NewDeliveryAddress(workspaceID uuid.UUID, label string, address valueobject.Address) (*DeliveryAddress, error) {
	if label == "" {
		label = address.Name()
	}
	return &DeliveryAddress{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		Label:                  label,
		Address:                address,
	}, nil
}

// Update replaces the label and address fields. Callers must check the
// address is not referenced by a forwarding request before updating.
func (a *DeliveryAddress) Update(label string, address valueobject.Address) error {
	if a.DeletedAt != nil {
		return shared.NewDomainError("ADDRESS_DELETED", "Delivery address has been deleted")
	}
	if label == "" {
		label = address.Name()
	}
	a.Label = label
	a.Address = address
	a.UpdatedAt = time.Now()
	return nil
}

// MakeDefault marks this address as the workspace default
func (a *DeliveryAddress) MakeDefault() {
	a.IsDefault = true
	a.UpdatedAt = time.Now()
}

// ClearDefault removes the default flag
func (a *DeliveryAddress) ClearDefault() {
	a.IsDefault = false
	a.UpdatedAt = time.Now()
}

// SoftDelete marks the address as deleted
func (a *DeliveryAddress) SoftDelete() error {
	if a.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Delivery address is already deleted")
	}
	now := time.Now()
	a.DeletedAt = &now
	a.UpdatedAt = now
	return nil
}

// IsDeleted returns true if the address has been soft-deleted
func (a *DeliveryAddress) IsDeleted() bool {
	return a.DeletedAt != nil
}
