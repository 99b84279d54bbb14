package mail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

// MockMailItemRepository is a mock implementation of mail.MailItemRepository
type MockMailItemRepository struct {
	mock.Mock
}

func (m *MockMailItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.MailItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.MailItem), args.Error(1)
}

func (m *MockMailItemRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*mail.MailItem, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.MailItem), args.Error(1)
}

func (m *MockMailItemRepository) FindByMailbox(ctx context.Context, mailboxID uuid.UUID, filter shared.Filter) ([]mail.MailItem, int64, error) {
	args := m.Called(ctx, mailboxID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]mail.MailItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockMailItemRepository) FindByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, filter shared.Filter) ([]mail.MailItem, int64, error) {
	args := m.Called(ctx, officeLocationID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]mail.MailItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockMailItemRepository) Save(ctx context.Context, item *mail.MailItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockMailboxRepository is a mock implementation of mail.MailboxRepository
type MockMailboxRepository struct {
	mock.Mock
}

func (m *MockMailboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.Mailbox, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]mail.Mailbox, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mail.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) ExistsByPMB(ctx context.Context, officeLocationID uuid.UUID, pmbNumber string) (bool, error) {
	args := m.Called(ctx, officeLocationID, pmbNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockMailboxRepository) Save(ctx context.Context, mailbox *mail.Mailbox) error {
	args := m.Called(ctx, mailbox)
	return args.Error(0)
}

// MockOfficeLocationRepository is a mock implementation of
// mail.OfficeLocationRepository
type MockOfficeLocationRepository struct {
	mock.Mock
}

func (m *MockOfficeLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.OfficeLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.OfficeLocation), args.Error(1)
}

func (m *MockOfficeLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]mail.OfficeLocation, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]mail.OfficeLocation), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfficeLocationRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockOfficeLocationRepository) Save(ctx context.Context, location *mail.OfficeLocation) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

// MockDeliveryAddressRepository is a mock implementation of
// mail.DeliveryAddressRepository
type MockDeliveryAddressRepository struct {
	mock.Mock
}

func (m *MockDeliveryAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*mail.DeliveryAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.DeliveryAddress), args.Error(1)
}

func (m *MockDeliveryAddressRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*mail.DeliveryAddress, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.DeliveryAddress), args.Error(1)
}

func (m *MockDeliveryAddressRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]mail.DeliveryAddress, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mail.DeliveryAddress), args.Error(1)
}

func (m *MockDeliveryAddressRepository) Save(ctx context.Context, address *mail.DeliveryAddress) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

// MockForwardingRepository is a mock implementation of forwarding.Repository
type MockForwardingRepository struct {
	mock.Mock
}

func (m *MockForwardingRepository) FindByID(ctx context.Context, id uuid.UUID) (*forwarding.ForwardingRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forwarding.ForwardingRequest), args.Error(1)
}

func (m *MockForwardingRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*forwarding.ForwardingRequest, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forwarding.ForwardingRequest), args.Error(1)
}

func (m *MockForwardingRepository) FindByMailItem(ctx context.Context, workspaceID, mailItemID uuid.UUID) ([]*forwarding.ForwardingRequest, error) {
	args := m.Called(ctx, workspaceID, mailItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*forwarding.ForwardingRequest), args.Error(1)
}

func (m *MockForwardingRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*forwarding.ForwardingRequest]), args.Error(1)
}

func (m *MockForwardingRepository) FindByOfficeLocation(ctx context.Context, officeLocationID uuid.UUID, status *forwarding.RequestStatus, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	args := m.Called(ctx, officeLocationID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*forwarding.ForwardingRequest]), args.Error(1)
}

func (m *MockForwardingRepository) ExistsByDeliveryAddress(ctx context.Context, deliveryAddressID uuid.UUID) (bool, error) {
	args := m.Called(ctx, deliveryAddressID)
	return args.Bool(0), args.Error(1)
}

func (m *MockForwardingRepository) Save(ctx context.Context, req *forwarding.ForwardingRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockForwardingRepository) SaveWithOutbox(ctx context.Context, req *forwarding.ForwardingRequest, entries ...*shared.OutboxEntry) error {
	args := m.Called(ctx, req, entries)
	return args.Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

// MockUsageMeter is a mock implementation of UsageMeter
type MockUsageMeter struct {
	mock.Mock
}

func (m *MockUsageMeter) CheckAndIncrement(ctx context.Context, workspaceID uuid.UUID, featureCode string, amount int64) (*billing.UsageRecord, error) {
	args := m.Called(ctx, workspaceID, featureCode, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UsageRecord), args.Error(1)
}
