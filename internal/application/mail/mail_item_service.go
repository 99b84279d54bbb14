package mail

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

// FeatureMailScans is the metered feature code consumed by scan requests
const FeatureMailScans = "mail_scans"

// scanContentTypes whitelists the formats the office scanners produce
var scanContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
	"application/pdf": true,
}

// ObjectStorageService is implemented by the storage infrastructure layer
// (S3-compatible stores or the local stub)
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks whether an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// UsageMeter checks plan entitlements and records metered consumption.
// Satisfied by the billing entitlement service.
type UsageMeter interface {
	CheckAndIncrement(ctx context.Context, workspaceID uuid.UUID, featureCode string, amount int64) (*billing.UsageRecord, error)
}

// ScanConfig holds presigned URL lifetimes for the scan flow
type ScanConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultScanConfig returns the default scan configuration
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// MailItemService handles the lifecycle of physical mail: intake at an
// office location, measurement, scanning, and the customer-facing
// shred/junk/hold actions. Items are never deleted, only flagged.
type MailItemService struct {
	itemRepo    mail.MailItemRepository
	mailboxRepo mail.MailboxRepository
	storage     ObjectStorageService
	meter       UsageMeter
	scanConfig  ScanConfig
	logger      *zap.Logger
}

// NewMailItemService creates a new mail item service. The meter may be nil
// when scan metering is not wired.
func NewMailItemService(
	itemRepo mail.MailItemRepository,
	mailboxRepo mail.MailboxRepository,
	storage ObjectStorageService,
	meter UsageMeter,
	logger *zap.Logger,
) *MailItemService {
	return &MailItemService{
		itemRepo:    itemRepo,
		mailboxRepo: mailboxRepo,
		storage:     storage,
		meter:       meter,
		scanConfig:  DefaultScanConfig(),
		logger:      logger,
	}
}

// SetScanConfig overrides the presigned URL lifetimes
func (s *MailItemService) SetScanConfig(cfg ScanConfig) {
	s.scanConfig = cfg
}

// LogIntake records a newly received piece of mail against a mailbox. The
// workspace and office location are taken from the mailbox, so a handler
// only needs the PMB they are sorting into.
func (s *MailItemService) LogIntake(ctx context.Context, input IntakeInput) (*mail.MailItem, error) {
	mailbox, err := s.mailboxRepo.FindByID(ctx, input.MailboxID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Mailbox not found")
		}
		return nil, err
	}
	if !mailbox.IsActive() {
		return nil, shared.NewDomainError("MAILBOX_CLOSED", "Mailbox is closed and cannot receive mail")
	}

	item, err := mail.NewMailItem(mailbox.WorkspaceID, mailbox.ID, mailbox.OfficeLocationID,
		input.SenderName, input.SenderAddress, input.Description)
	if err != nil {
		return nil, err
	}
	if input.Dimensions != nil {
		d := input.Dimensions
		if err := item.SetDimensions(d.Length, d.Width, d.Height, d.Weight); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Mail item logged",
		zap.String("mail_item_id", item.ID.String()),
		zap.String("mailbox_id", mailbox.ID.String()),
		zap.String("workspace_id", item.WorkspaceID.String()))

	return item, nil
}

// RecordDimensions measures an item after intake. Handler-facing: items are
// looked up without workspace scoping.
func (s *MailItemService) RecordDimensions(ctx context.Context, itemID uuid.UUID, input MeasureInput) (*mail.MailItem, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.SetDimensions(input.Length, input.Width, input.Height, input.Weight); err != nil {
		return nil, err
	}
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// InitiateScan reserves scan quota and returns a presigned upload URL for
// the scan image. The quota is consumed here rather than at confirmation so
// the entitlement check happens before any storage work.
func (s *MailItemService) InitiateScan(ctx context.Context, input ScanUploadInput) (*ScanUploadOutput, error) {
	item, err := s.findItem(ctx, input.MailItemID)
	if err != nil {
		return nil, err
	}
	if item.IsShredded {
		return nil, shared.NewDomainError("ITEM_SHREDDED", "Cannot scan a shredded mail item")
	}
	if !scanContentTypes[input.ContentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed for scans", input.ContentType))
	}

	if s.meter != nil {
		if _, err := s.meter.CheckAndIncrement(ctx, item.WorkspaceID, FeatureMailScans, 1); err != nil {
			return nil, err
		}
	}

	key := scanObjectKey(item, input.FileName)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, input.ContentType, s.scanConfig.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate scan upload URL",
			zap.String("mail_item_id", item.ID.String()), zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &ScanUploadOutput{
		ObjectKey: key,
		UploadURL: url,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmScan verifies the upload landed in storage and marks the item
// scanned under the given object key.
func (s *MailItemService) ConfirmScan(ctx context.Context, itemID uuid.UUID, objectKey string) (*mail.MailItem, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	// The key must be one we issued for this item, not an arbitrary object
	if !strings.HasPrefix(objectKey, scanKeyPrefix(item)) {
		return nil, shared.NewDomainError("INVALID_SCAN_KEY", "Object key does not belong to this mail item")
	}

	exists, err := s.storage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify scan upload")
	}
	if !exists {
		return nil, shared.NewDomainError("SCAN_NOT_UPLOADED", "Scan image not found in storage")
	}

	if err := item.MarkScanned(objectKey); err != nil {
		return nil, err
	}
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Mail item scanned",
		zap.String("mail_item_id", item.ID.String()),
		zap.String("object_key", objectKey))

	return item, nil
}

// GetScanURL returns a presigned download link for the item's scan image
func (s *MailItemService) GetScanURL(ctx context.Context, workspaceID, itemID uuid.UUID) (*ScanDownloadOutput, error) {
	item, err := s.findWorkspaceItem(ctx, workspaceID, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsScanned || item.ScanObjectKey == "" {
		return nil, shared.NewDomainError("SCAN_NOT_AVAILABLE", "Mail item has not been scanned")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, item.ScanObjectKey, s.scanConfig.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}
	return &ScanDownloadOutput{URL: url, ExpiresAt: expiresAt}, nil
}

// Shred flags the item as destroyed and removes any stored scan image. The
// scan delete is best-effort: the flag is authoritative.
func (s *MailItemService) Shred(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error) {
	item, err := s.findWorkspaceItem(ctx, workspaceID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Shred(); err != nil {
		return nil, err
	}
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if item.ScanObjectKey != "" {
		if err := s.storage.DeleteObject(ctx, item.ScanObjectKey); err != nil {
			s.logger.Warn("Failed to delete scan of shredded mail item",
				zap.String("mail_item_id", item.ID.String()),
				zap.String("object_key", item.ScanObjectKey),
				zap.Error(err))
		}
	}

	return item, nil
}

// MarkJunk flags the item as junk mail
func (s *MailItemService) MarkJunk(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error) {
	item, err := s.findWorkspaceItem(ctx, workspaceID, itemID)
	if err != nil {
		return nil, err
	}
	item.MarkJunk()
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Hold places the item on hold at the office location
func (s *MailItemService) Hold(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error) {
	item, err := s.findWorkspaceItem(ctx, workspaceID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Hold(); err != nil {
		return nil, err
	}
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReleaseHold releases a held item
func (s *MailItemService) ReleaseHold(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error) {
	item, err := s.findWorkspaceItem(ctx, workspaceID, itemID)
	if err != nil {
		return nil, err
	}
	item.ReleaseHold()
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetMailItem returns one item scoped to the workspace
func (s *MailItemService) GetMailItem(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error) {
	return s.findWorkspaceItem(ctx, workspaceID, itemID)
}

// ListByMailbox returns a page of a mailbox's items. The mailbox must
// belong to the workspace.
func (s *MailItemService) ListByMailbox(ctx context.Context, workspaceID, mailboxID uuid.UUID, filter shared.Filter) (*shared.Paginated[mail.MailItem], error) {
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

	items, total, err := s.itemRepo.FindByMailbox(ctx, mailboxID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListByOfficeLocation returns a page of items held at one office, across
// workspaces. Handler-facing.
func (s *MailItemService) ListByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, filter shared.Filter) (*shared.Paginated[mail.MailItem], error) {
	items, total, err := s.itemRepo.FindByOfficeLocation(ctx, officeLocationID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *MailItemService) findItem(ctx context.Context, itemID uuid.UUID) (*mail.MailItem, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Mail item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *MailItemService) findWorkspaceItem(ctx context.Context, workspaceID, itemID uuid.UUID) (*mail.MailItem, error) {
	item, err := s.itemRepo.FindByIDForWorkspace(ctx, workspaceID, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Mail item not found")
		}
		return nil, err
	}
	return item, nil
}

// scanKeyPrefix namespaces scan objects per workspace and item
func scanKeyPrefix(item *mail.MailItem) string {
	return fmt.Sprintf("scans/%s/%s/", item.WorkspaceID, item.ID)
}

// scanObjectKey builds a collision-free object key, keeping only the file
// extension from the client-supplied name
func scanObjectKey(item *mail.MailItem, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return scanKeyPrefix(item) + uuid.New().String() + ext
}
