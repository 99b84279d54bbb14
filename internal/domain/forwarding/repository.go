package forwarding

import (
	"context"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// Repository persists forwarding requests
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ForwardingRequest, error)
	FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*ForwardingRequest, error)
	FindByMailItem(ctx context.Context, workspaceID, mailItemID uuid.UUID) ([]*ForwardingRequest, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ForwardingRequest], error)
	// FindByOfficeLocation lists requests across workspaces for operations
	// staff at one office, optionally narrowed by status
	FindByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, status *RequestStatus, filter shared.Filter) (*shared.Paginated[*ForwardingRequest], error)
	// ExistsByDeliveryAddress reports whether any request references the
	// delivery address; referenced addresses are frozen
	ExistsByDeliveryAddress(ctx context.Context, deliveryAddressID uuid.UUID) (bool, error)
	Save(ctx context.Context, req *ForwardingRequest) error
	// SaveWithOutbox persists the request and outbox entries in one
	// transaction so the charge task cannot be lost
	SaveWithOutbox(ctx context.Context, req *ForwardingRequest, entries ...*shared.OutboxEntry) error
}
