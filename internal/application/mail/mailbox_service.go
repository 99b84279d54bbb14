package mail

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

// MailboxService opens and closes virtual mailboxes. PMB numbers are unique
// within an office location.
type MailboxService struct {
	mailboxRepo  mail.MailboxRepository
	locationRepo mail.OfficeLocationRepository
	logger       *zap.Logger
}

// NewMailboxService creates a new mailbox service
func NewMailboxService(
	mailboxRepo mail.MailboxRepository,
	locationRepo mail.OfficeLocationRepository,
	logger *zap.Logger,
) *MailboxService {
	return &MailboxService{
		mailboxRepo:  mailboxRepo,
		locationRepo: locationRepo,
		logger:       logger,
	}
}

// OpenMailbox assigns a PMB number to the workspace at an office location
func (s *MailboxService) OpenMailbox(ctx context.Context, input OpenMailboxInput) (*mail.Mailbox, error) {
	location, err := s.locationRepo.FindByID(ctx, input.OfficeLocationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Office location not found")
		}
		return nil, err
	}
	if !location.Active {
		return nil, shared.NewDomainError("LOCATION_INACTIVE", "Office location is not accepting new mailboxes")
	}

	mailbox, err := mail.NewMailbox(input.WorkspaceID, location.ID, input.PMBNumber)
	if err != nil {
		return nil, err
	}

	taken, err := s.mailboxRepo.ExistsByPMB(ctx, location.ID, mailbox.PMBNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "PMB number is already assigned at this location")
	}

	if err := s.mailboxRepo.Save(ctx, mailbox); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "PMB number is already assigned at this location")
		}
		return nil, err
	}

	s.logger.Info("Mailbox opened",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("office_location_id", location.ID.String()),
		zap.String("pmb_number", mailbox.PMBNumber))

	return mailbox, nil
}

// CloseMailbox closes the mailbox; history is kept
func (s *MailboxService) CloseMailbox(ctx context.Context, workspaceID, mailboxID uuid.UUID) (*mail.Mailbox, error) {
	mailbox, err := s.findMailbox(ctx, workspaceID, mailboxID)
	if err != nil {
		return nil, err
	}
	if err := mailbox.Close(); err != nil {
		return nil, err
	}
	mailbox.IncrementVersion()
	if err := s.mailboxRepo.Save(ctx, mailbox); err != nil {
		return nil, err
	}

	s.logger.Info("Mailbox closed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("mailbox_id", mailbox.ID.String()))

	return mailbox, nil
}

// GetMailbox returns one mailbox scoped to the workspace
func (s *MailboxService) GetMailbox(ctx context.Context, workspaceID, mailboxID uuid.UUID) (*mail.Mailbox, error) {
	return s.findMailbox(ctx, workspaceID, mailboxID)
}

// ListMailboxes returns all of the workspace's mailboxes
func (s *MailboxService) ListMailboxes(ctx context.Context, workspaceID uuid.UUID) ([]mail.Mailbox, error) {
	return s.mailboxRepo.FindByWorkspace(ctx, workspaceID)
}

func (s *MailboxService) findMailbox(ctx context.Context, workspaceID, mailboxID uuid.UUID) (*mail.Mailbox, error) {
	mailbox, err := s.mailboxRepo.FindByID(ctx, mailboxID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Mailbox not found")
		}
		return nil, err
	}
	if mailbox.WorkspaceID != workspaceID {
		return nil, shared.NewDomainError("NOT_FOUND", "Mailbox not found")
	}
	return mailbox, nil
}
