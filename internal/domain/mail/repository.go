package mail

import (
	"context"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// MailItemRepository defines persistence operations for mail items
type MailItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MailItem, error)
	FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*MailItem, error)
	FindByMailbox(ctx context.Context, mailboxID uuid.UUID, filter shared.Filter) ([]MailItem, int64, error)
	FindByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, filter shared.Filter) ([]MailItem, int64, error)
	Save(ctx context.Context, item *MailItem) error
}

// MailboxRepository defines persistence operations for mailboxes
type MailboxRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Mailbox, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Mailbox, error)
	ExistsByPMB(ctx context.Context, officeLocationID uuid.UUID, pmbNumber string) (bool, error)
	Save(ctx context.Context, mailbox *Mailbox) error
}

// OfficeLocationRepository defines persistence operations for office locations
type OfficeLocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OfficeLocation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]OfficeLocation, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, location *OfficeLocation) error
}

// DeliveryAddressRepository defines persistence operations for delivery addresses
type DeliveryAddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryAddress, error)
	FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*DeliveryAddress, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]DeliveryAddress, error)
	Save(ctx context.Context, address *DeliveryAddress) error
}
