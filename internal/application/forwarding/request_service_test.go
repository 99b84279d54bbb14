package forwarding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/shared"
)

type requestServiceFixture struct {
	mailItemRepo       *MockMailItemRepository
	locationRepo       *MockOfficeLocationRepository
	addressRepo        *MockDeliveryAddressRepository
	optionRepo         *MockShippingOptionRepository
	locationOptionRepo *MockLocationShippingOptionRepository
	requestRepo        *MockForwardingRepository
	gateway            *MockRateGateway
	service            *RequestService
}

func newRequestServiceFixture() *requestServiceFixture {
	f := &requestServiceFixture{
		mailItemRepo:       new(MockMailItemRepository),
		locationRepo:       new(MockOfficeLocationRepository),
		addressRepo:        new(MockDeliveryAddressRepository),
		optionRepo:         new(MockShippingOptionRepository),
		locationOptionRepo: new(MockLocationShippingOptionRepository),
		requestRepo:        new(MockForwardingRepository),
		gateway:            new(MockRateGateway),
	}
	f.service = NewRequestService(
		f.mailItemRepo, f.locationRepo, f.addressRepo,
		f.optionRepo, f.locationOptionRepo, f.requestRepo,
		f.gateway, testForwardingConfig(), zap.NewNop())
	return f
}

// arrange sets up the happy path up to the re-quote; individual tests
// override the gateway behavior from there
func (f *requestServiceFixture) arrange(t *testing.T) CreateRequestInput {
	t.Helper()
	workspaceID := uuid.New()
	item := newMeasuredItem(t, workspaceID)
	location := newTestLocation(t)
	item.OfficeLocationID = location.ID
	address := newTestDeliveryAddress(t, workspaceID)

	f.mailItemRepo.On("FindByIDForWorkspace", mock.Anything, workspaceID, item.ID).Return(item, nil)
	f.addressRepo.On("FindByIDForWorkspace", mock.Anything, workspaceID, address.ID).Return(address, nil)
	f.locationRepo.On("FindByID", mock.Anything, location.ID).Return(location, nil)
	f.requestRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	return CreateRequestInput{
		WorkspaceID:       workspaceID,
		MailItemID:        item.ID,
		DeliveryAddressID: address.ID,
		SelectedRate: forwarding.RateSelection{
			RateID:   "rate_orig",
			Carrier:  "USPS",
			Service:  "Priority",
			Fee:      1000,
			Currency: "USD",
		},
	}
}

func freshQuote(amount int64) *forwarding.Quote {
	return &forwarding.Quote{
		ShipmentID: "shp_fresh",
		Rates: []forwarding.Rate{
			{RateID: "rate_fresh", Carrier: "USPS", Service: "Priority", Amount: amount, Currency: "USD"},
			{RateID: "rate_other", Carrier: "UPS", Service: "Ground", Amount: 600, Currency: "USD"},
		},
	}
}

func TestCreateForwardingRequest_Success(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	f.gateway.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(freshQuote(1000), nil)
	f.gateway.On("BuyShipment", mock.Anything, "shp_fresh", "rate_fresh").
		Return(&forwarding.PurchasedLabel{
			ShipmentID:   "shp_fresh",
			RateID:       "rate_fresh",
			Carrier:      "USPS",
			Service:      "Priority",
			Amount:       1000,
			Currency:     "USD",
			TrackingCode: "9400100000000000000000",
			LabelURL:     "https://labels.test/label.png",
		}, nil)
	f.requestRepo.On("SaveWithOutbox", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.mailItemRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	output, err := f.service.CreateForwardingRequest(context.Background(), input)

	require.NoError(t, err)
	req := output.Request
	assert.Equal(t, forwarding.RequestStatusLabelPurchased, req.Status)
	assert.Equal(t, forwarding.PaymentStatusPending, req.PaymentStatus)
	assert.Equal(t, "9400100000000000000000", req.TrackingCode)
	assert.Equal(t, "https://labels.test/label.png", output.LabelURL)

	// The original fee is charged even when the fresh quote matches
	assert.Equal(t, int64(1000), output.Cost.BaseShippingCost)
	assert.Equal(t, int64(200), output.Cost.ServiceFee)
	assert.Equal(t, output.Cost.BaseShippingCost+output.Cost.SpeedFee+output.Cost.PackagingFee+output.Cost.ServiceFee, output.Cost.Total)

	// The charge travels through the outbox, keyed by the request
	f.requestRepo.AssertCalled(t, "SaveWithOutbox", mock.Anything, req, mock.MatchedBy(func(entries []*shared.OutboxEntry) bool {
		if len(entries) != 1 {
			return false
		}
		entry := entries[0]
		return entry.EventType == forwarding.EventTypeChargeDue && entry.AggregateID == req.ID
	}))

	// The mail item is flagged forwarded
	f.mailItemRepo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(item interface{}) bool {
		return true
	}))
}

func TestCreateForwardingRequest_PriceWithinTolerance(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	// 1500 vs 1000 selected: drift of exactly 500 is allowed
	f.gateway.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(freshQuote(1500), nil)
	f.gateway.On("BuyShipment", mock.Anything, "shp_fresh", "rate_fresh").
		Return(&forwarding.PurchasedLabel{ShipmentID: "shp_fresh", RateID: "rate_fresh", TrackingCode: "tc", LabelURL: "url"}, nil)
	f.requestRepo.On("SaveWithOutbox", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.mailItemRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	output, err := f.service.CreateForwardingRequest(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), output.Cost.BaseShippingCost)
}

func TestCreateForwardingRequest_PriceChanged(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	// 1600 vs 1000: drift of 600 exceeds the 500 tolerance
	f.gateway.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(freshQuote(1600), nil)

	_, err := f.service.CreateForwardingRequest(context.Background(), input)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "PRICE_CHANGED", de.Code)
	assert.Contains(t, de.Message, "10.00")
	assert.Contains(t, de.Message, "16.00")
	f.gateway.AssertNotCalled(t, "BuyShipment", mock.Anything, mock.Anything, mock.Anything)

	// The write-ahead intent row is left FAILED, not deleted
	f.requestRepo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(req *forwarding.ForwardingRequest) bool {
		return req.Status == forwarding.RequestStatusFailed
	}))
}

func TestCreateForwardingRequest_RateNoLongerAvailable(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)
	input.SelectedRate.Carrier = "DHL"
	input.SelectedRate.Service = "Express"

	f.gateway.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(freshQuote(1000), nil)

	_, err := f.service.CreateForwardingRequest(context.Background(), input)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "RATE_UNAVAILABLE", de.Code)
	f.gateway.AssertNotCalled(t, "BuyShipment", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateForwardingRequest_PurchaseFails(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	f.gateway.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(freshQuote(1000), nil)
	f.gateway.On("BuyShipment", mock.Anything, "shp_fresh", "rate_fresh").
		Return(nil, forwarding.ErrLabelPurchaseRejected)

	_, err := f.service.CreateForwardingRequest(context.Background(), input)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "LABEL_PURCHASE_FAILED", de.Code)
	assert.Contains(t, de.Message, "Label purchase failed")

	f.requestRepo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(req *forwarding.ForwardingRequest) bool {
		return req.Status == forwarding.RequestStatusFailed && req.FailureReason != ""
	}))
	f.requestRepo.AssertNotCalled(t, "SaveWithOutbox", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateForwardingRequest_MailItemNotFound(t *testing.T) {
	f := newRequestServiceFixture()
	f.mailItemRepo.On("FindByIDForWorkspace", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.ErrNotFound)

	_, err := f.service.CreateForwardingRequest(context.Background(), CreateRequestInput{
		WorkspaceID:       uuid.New(),
		MailItemID:        uuid.New(),
		DeliveryAddressID: uuid.New(),
		SelectedRate:      forwarding.RateSelection{Carrier: "USPS", Service: "Priority", Fee: 1000, Currency: "USD"},
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	f.gateway.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateForwardingRequest_FeeOverrides(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	speedOption, err := catalog.NewShippingOption(catalog.ShippingOptionKindSpeed, "express", "Express handling", 1000)
	require.NoError(t, err)
	f.optionRepo.On("FindByID", mock.Anything, speedOption.ID).Return(speedOption, nil)

	// Caller overrides beat both the location price and the catalog base
	input.SpeedOptionID = &speedOption.ID
	input.SpeedFee = int64Ptr(600)
	input.PackagingFee = int64Ptr(150) // no packaging option selected
	input.ServiceFee = int64Ptr(0)     // waives the configured default

	f.gateway.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(freshQuote(1000), nil)
	f.gateway.On("BuyShipment", mock.Anything, "shp_fresh", "rate_fresh").
		Return(&forwarding.PurchasedLabel{ShipmentID: "shp_fresh", RateID: "rate_fresh", TrackingCode: "tc", LabelURL: "url"}, nil)
	f.requestRepo.On("SaveWithOutbox", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.mailItemRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	output, err := f.service.CreateForwardingRequest(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, int64(600), output.Cost.SpeedFee)
	assert.Equal(t, int64(150), output.Cost.PackagingFee)
	assert.Equal(t, int64(0), output.Cost.ServiceFee)
	assert.Equal(t, int64(1750), output.Cost.Total)
	// The override skips the location price lookup entirely
	f.locationOptionRepo.AssertNotCalled(t, "FindByLocationAndOption", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateForwardingRequest_OverrideStillValidatesOption(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	missing := uuid.New()
	input.SpeedOptionID = &missing
	input.SpeedFee = int64Ptr(600)
	f.optionRepo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	_, err := f.service.CreateForwardingRequest(context.Background(), input)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	f.gateway.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChargeOutboxEntry_DeterministicEventID(t *testing.T) {
	f := newRequestServiceFixture()
	input := f.arrange(t)

	cost, err := forwarding.NewCostBreakdown(1000, 0, 0, 200)
	require.NoError(t, err)
	req, err := forwarding.NewForwardingRequest(
		input.WorkspaceID, input.MailItemID, uuid.New(), uuid.New(), input.DeliveryAddressID,
		nil, nil, input.SelectedRate, cost, forwarding.PriorityNormal)
	require.NoError(t, err)

	first, err := f.service.chargeOutboxEntry(req)
	require.NoError(t, err)
	second, err := f.service.chargeOutboxEntry(req)
	require.NoError(t, err)

	// A re-enqueue of the same request produces the same event ID, so
	// the outbox unique index stops the duplicate
	assert.Equal(t, first.EventID, second.EventID)
	assert.Equal(t, forwarding.EventTypeChargeDue, first.EventType)
}

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "10.00", formatMinorUnits(1000))
	assert.Equal(t, "16.05", formatMinorUnits(1605))
	assert.Equal(t, "0.99", formatMinorUnits(99))
	assert.Equal(t, "-3.50", formatMinorUnits(-350))
}
