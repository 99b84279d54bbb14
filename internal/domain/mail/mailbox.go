package mail

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// MailboxStatus represents the status of a mailbox
type MailboxStatus string

const (
	MailboxStatusActive MailboxStatus = "ACTIVE"
	MailboxStatusClosed MailboxStatus = "CLOSED"
)

// Mailbox is a workspace's virtual mail address at an office location.
// The PMB number is unique within a location.
type Mailbox struct {
	shared.WorkspaceAggregateRoot
	OfficeLocationID uuid.UUID
	PMBNumber        string
	Status           MailboxStatus
	ClosedAt         *time.Time
}

// NewMailbox creates a new active mailbox
func NewMailbox(workspaceID, officeLocationID uuid.UUID, pmbNumber string) (*Mailbox, error) {
	pmbNumber = strings.TrimSpace(pmbNumber)
	if officeLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Office location ID cannot be empty")
	}
	if pmbNumber == "" {
		return nil, shared.NewDomainError("INVALID_PMB", "PMB number cannot be empty")
	}

	return &Mailbox{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		OfficeLocationID:       officeLocationID,
		PMBNumber:              pmbNumber,
		Status:                 MailboxStatusActive,
	}, nil
}

// Close closes the mailbox. Closed mailboxes stop receiving mail but keep
// their history.
func (m *Mailbox) Close() error {
	if m.Status == MailboxStatusClosed {
		return shared.NewDomainError("ALREADY_CLOSED", "Mailbox is already closed")
	}
	now := time.Now()
	m.Status = MailboxStatusClosed
	m.ClosedAt = &now
	m.UpdatedAt = now
	return nil
}

// IsActive returns true if the mailbox can receive mail
func (m *Mailbox) IsActive() bool {
	return m.Status == MailboxStatusActive
}
