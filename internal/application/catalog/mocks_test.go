package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

// MockPlanRepository is a mock implementation of catalog.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByCode(ctx context.Context, code string) (*catalog.Plan, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Plan, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Plan), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlanRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *catalog.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockFeatureRepository is a mock implementation of catalog.FeatureRepository
type MockFeatureRepository struct {
	mock.Mock
}

func (m *MockFeatureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Feature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Feature), args.Error(1)
}

func (m *MockFeatureRepository) FindByCode(ctx context.Context, code string) (*catalog.Feature, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Feature), args.Error(1)
}

func (m *MockFeatureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Feature, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Feature), args.Get(1).(int64), args.Error(2)
}

func (m *MockFeatureRepository) Save(ctx context.Context, feature *catalog.Feature) error {
	args := m.Called(ctx, feature)
	return args.Error(0)
}

// MockPlanFeatureRepository is a mock implementation of catalog.PlanFeatureRepository
type MockPlanFeatureRepository struct {
	mock.Mock
}

func (m *MockPlanFeatureRepository) FindByPlan(ctx context.Context, planID uuid.UUID) ([]catalog.PlanFeature, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.PlanFeature), args.Error(1)
}

func (m *MockPlanFeatureRepository) FindByPlanAndFeature(ctx context.Context, planID, featureID uuid.UUID) (*catalog.PlanFeature, error) {
	args := m.Called(ctx, planID, featureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PlanFeature), args.Error(1)
}

func (m *MockPlanFeatureRepository) Save(ctx context.Context, assignment *catalog.PlanFeature) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockPlanFeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAddonRepository is a mock implementation of catalog.AddonRepository
type MockAddonRepository struct {
	mock.Mock
}

func (m *MockAddonRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Addon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Addon), args.Error(1)
}

func (m *MockAddonRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Addon, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Addon), args.Get(1).(int64), args.Error(2)
}

func (m *MockAddonRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAddonRepository) Save(ctx context.Context, addon *catalog.Addon) error {
	args := m.Called(ctx, addon)
	return args.Error(0)
}

// MockCarrierRepository is a mock implementation of catalog.CarrierRepository
type MockCarrierRepository struct {
	mock.Mock
}

func (m *MockCarrierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Carrier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) FindByCode(ctx context.Context, code string) (*catalog.Carrier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Carrier, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Carrier), args.Get(1).(int64), args.Error(2)
}

func (m *MockCarrierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarrierRepository) Save(ctx context.Context, carrier *catalog.Carrier) error {
	args := m.Called(ctx, carrier)
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
	var assignments []catalog.LocationShippingOption
	var options []catalog.ShippingOption
	if args.Get(0) != nil {
		assignments = args.Get(0).([]catalog.LocationShippingOption)
	}
	if args.Get(1) != nil {
		options = args.Get(1).([]catalog.ShippingOption)
	}
	return assignments, options, args.Error(2)
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
