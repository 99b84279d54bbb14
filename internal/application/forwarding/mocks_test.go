package forwarding

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mailriver/backend/internal/domain/catalog"
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

// MockOfficeLocationRepository is a mock implementation of mail.OfficeLocationRepository
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

// MockDeliveryAddressRepository is a mock implementation of mail.DeliveryAddressRepository
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

// MockShippingOptionRepository is a mock implementation of catalog.ShippingOptionRepository
type MockShippingOptionRepository struct {
	mock.Mock
}

func (m *MockShippingOptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ShippingOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ShippingOption), args.Error(1)
}

func (m *MockShippingOptionRepository) FindByKind(ctx context.Context, kind catalog.ShippingOptionKind) ([]catalog.ShippingOption, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ShippingOption), args.Error(1)
}

func (m *MockShippingOptionRepository) ExistsByCode(ctx context.Context, kind catalog.ShippingOptionKind, code string) (bool, error) {
	args := m.Called(ctx, kind, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockShippingOptionRepository) Save(ctx context.Context, option *catalog.ShippingOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

// MockLocationShippingOptionRepository is a mock implementation of catalog.LocationShippingOptionRepository
type MockLocationShippingOptionRepository struct {
	mock.Mock
}

func (m *MockLocationShippingOptionRepository) FindByLocation(ctx context.Context, officeLocationID uuid.UUID) ([]catalog.LocationShippingOption, error) {
	args := m.Called(ctx, officeLocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.LocationShippingOption), args.Error(1)
}

func (m *MockLocationShippingOptionRepository) FindByLocationAndKind(ctx context.Context, officeLocationID uuid.UUID, kind catalog.ShippingOptionKind) ([]catalog.LocationShippingOption, []catalog.ShippingOption, error) {
	args := m.Called(ctx, officeLocationID, kind)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]catalog.LocationShippingOption), args.Get(1).([]catalog.ShippingOption), args.Error(2)
}

func (m *MockLocationShippingOptionRepository) FindByLocationAndOption(ctx context.Context, officeLocationID, shippingOptionID uuid.UUID) (*catalog.LocationShippingOption, error) {
	args := m.Called(ctx, officeLocationID, shippingOptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.LocationShippingOption), args.Error(1)
}

func (m *MockLocationShippingOptionRepository) Save(ctx context.Context, assignment *catalog.LocationShippingOption) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockLocationShippingOptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
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

// MockRateGateway is a mock implementation of forwarding.RateGateway
type MockRateGateway struct {
	mock.Mock
}

func (m *MockRateGateway) CreateShipment(ctx context.Context, from, to forwarding.ShipmentAddress, parcel forwarding.Parcel) (*forwarding.Quote, error) {
	args := m.Called(ctx, from, to, parcel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forwarding.Quote), args.Error(1)
}

func (m *MockRateGateway) BuyShipment(ctx context.Context, shipmentID, rateID string) (*forwarding.PurchasedLabel, error) {
	args := m.Called(ctx, shipmentID, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forwarding.PurchasedLabel), args.Error(1)
}

func (m *MockRateGateway) Track(ctx context.Context, trackingCode, carrier string) (*forwarding.TrackingStatus, error) {
	args := m.Called(ctx, trackingCode, carrier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forwarding.TrackingStatus), args.Error(1)
}
