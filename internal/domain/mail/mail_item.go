package mail

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// Dimensions holds the measured physical dimensions of a mail item.
// Length, width, and height are in inches; weight is in ounces. All four
// must be present before the item can be quoted for forwarding.
type Dimensions struct {
	Length *float64
	Width  *float64
	Height *float64
	Weight *float64
}

// Complete returns true if all four dimensions are populated
func (d Dimensions) Complete() bool {
	return d.Length != nil && d.Width != nil && d.Height != nil && d.Weight != nil
}

// MailItem is one physical piece of mail or a package received at an office
// location on behalf of a mailbox. Items are never deleted, only flagged.
type MailItem struct {
	shared.WorkspaceAggregateRoot
	MailboxID        uuid.UUID
	OfficeLocationID uuid.UUID
	SenderName       string
	SenderAddress    string
	Description      string
	Dimensions       Dimensions
	IsForwarded      bool
	IsShredded       bool
	IsJunk           bool
	IsScanned        bool
	IsHeld           bool
	ScanObjectKey    string
	ReceivedAt       time.Time
}

// NewMailItem logs a newly received mail item at intake
func NewMailItem(workspaceID, mailboxID, officeLocationID uuid.UUID, senderName, senderAddress, description string) (*MailItem, error) {
	if mailboxID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MAILBOX", "Mailbox ID cannot be empty")
	}
	if officeLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Office location ID cannot be empty")
	}

	return &MailItem{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		MailboxID:              mailboxID,
		OfficeLocationID:       officeLocationID,
		SenderName:             strings.TrimSpace(senderName),
		SenderAddress:          strings.TrimSpace(senderAddress),
		Description:            strings.TrimSpace(description),
		ReceivedAt:             time.Now(),
	}, nil
}

// SetDimensions records the measured dimensions. All values must be positive.
func (m *MailItem) SetDimensions(length, width, height, weight float64) error {
	if length <= 0 || width <= 0 || height <= 0 || weight <= 0 {
		return shared.NewDomainError("INVALID_DIMENSIONS", "Dimensions must be positive")
	}
	m.Dimensions = Dimensions{
		Length: &length,
		Width:  &width,
		Height: &height,
		Weight: &weight,
	}
	m.UpdatedAt = time.Now()
	return nil
}

// CanForward reports whether the item is eligible for forwarding
func (m *MailItem) CanForward() error {
	if m.IsShredded {
		return shared.NewDomainError("ITEM_SHREDDED", "Mail item has been shredded")
	}
	if m.IsForwarded {
		return shared.NewDomainError("ALREADY_FORWARDED", "Mail item has already been forwarded")
	}
	if !m.Dimensions.Complete() {
		return shared.NewDomainError("DIMENSIONS_REQUIRED", "Mail item dimensions are required for forwarding")
	}
	return nil
}

// MarkForwarded flags the item as forwarded
func (m *MailItem) MarkForwarded() error {
	if err := m.CanForward(); err != nil {
		return err
	}
	m.IsForwarded = true
	m.UpdatedAt = time.Now()
	return nil
}

// MarkScanned records the object-store key of the scan image
func (m *MailItem) MarkScanned(objectKey string) error {
	if objectKey == "" {
		return shared.NewDomainError("INVALID_SCAN_KEY", "Scan object key cannot be empty")
	}
	m.IsScanned = true
	m.ScanObjectKey = objectKey
	m.UpdatedAt = time.Now()
	return nil
}

// Shred flags the item as shredded. Forwarded items cannot be shredded.
func (m *MailItem) Shred() error {
	if m.IsForwarded {
		return shared.NewDomainError("ITEM_FORWARDED", "Cannot shred a forwarded mail item")
	}
	if m.IsShredded {
		return shared.NewDomainError("ALREADY_SHREDDED", "Mail item has already been shredded")
	}
	m.IsShredded = true
	m.IsHeld = false
	m.UpdatedAt = time.Now()
	return nil
}

// MarkJunk flags the item as junk mail
func (m *MailItem) MarkJunk() {
	m.IsJunk = true
	m.UpdatedAt = time.Now()
}

// Hold places the item on hold at the office location
func (m *MailItem) Hold() error {
	if m.IsShredded {
		return shared.NewDomainError("ITEM_SHREDDED", "Cannot hold a shredded mail item")
	}
	m.IsHeld = true
	m.UpdatedAt = time.Now()
	return nil
}

// ReleaseHold releases a held item
func (m *MailItem) ReleaseHold() {
	m.IsHeld = false
	m.UpdatedAt = time.Now()
}
