package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v81"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
	infrabilling "github.com/mailriver/backend/internal/infrastructure/billing"
	"github.com/mailriver/backend/internal/infrastructure/payment"
)

// MockBalanceRepository is a mock implementation of billing.BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*billing.WorkspaceBalance, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.WorkspaceBalance), args.Error(1)
}

func (m *MockBalanceRepository) Save(ctx context.Context, balance *billing.WorkspaceBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) ApplyDelta(ctx context.Context, workspaceID uuid.UUID, balanceDelta, debtDelta int64, expectedVersion int) (*billing.WorkspaceBalance, error) {
	args := m.Called(ctx, workspaceID, balanceDelta, debtDelta, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.WorkspaceBalance), args.Error(1)
}

// MockTransactionRepository is a mock implementation of billing.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.BalanceTransaction], error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.BalanceTransaction]), args.Error(1)
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, refType billing.ReferenceType, refID string) (*billing.BalanceTransaction, error) {
	args := m.Called(ctx, refType, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BalanceTransaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *billing.BalanceTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockSubscriptionRepository is a mock implementation of billing.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*billing.Subscription, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// MockUsageRepository is a mock implementation of billing.UsageRepository
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) FindByWorkspaceFeaturePeriod(ctx context.Context, workspaceID uuid.UUID, featureCode, period string) (*billing.UsageRecord, error) {
	args := m.Called(ctx, workspaceID, featureCode, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UsageRecord), args.Error(1)
}

func (m *MockUsageRepository) FindByWorkspacePeriod(ctx context.Context, workspaceID uuid.UUID, period string) ([]*billing.UsageRecord, error) {
	args := m.Called(ctx, workspaceID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.UsageRecord), args.Error(1)
}

func (m *MockUsageRepository) Save(ctx context.Context, record *billing.UsageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockWorkspaceRepository is a mock implementation of identity.WorkspaceRepository
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) FindBySlug(ctx context.Context, slug string) (*identity.Workspace, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaceRepository) Save(ctx context.Context, workspace *identity.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

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

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCustomer(ctx context.Context, input payment.CreateCustomerInput) (*payment.CreateCustomerOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CreateCustomerOutput), args.Error(1)
}

func (m *MockPaymentGateway) CreateSubscriptionCheckout(ctx context.Context, input payment.SubscriptionCheckoutInput) (*payment.CheckoutSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSessionOutput), args.Error(1)
}

func (m *MockPaymentGateway) CreateTopUpCheckout(ctx context.Context, input payment.TopUpCheckoutInput) (*payment.CheckoutSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSessionOutput), args.Error(1)
}

func (m *MockPaymentGateway) CreatePortalSession(ctx context.Context, customerID string) (*payment.PortalSessionOutput, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PortalSessionOutput), args.Error(1)
}

func (m *MockPaymentGateway) ChangePlan(ctx context.Context, input payment.ChangePlanInput) (*payment.SubscriptionState, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.SubscriptionState), args.Error(1)
}

func (m *MockPaymentGateway) CancelSubscription(ctx context.Context, input payment.CancelSubscriptionInput) (*payment.SubscriptionState, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.SubscriptionState), args.Error(1)
}

func (m *MockPaymentGateway) ResumeSubscription(ctx context.Context, workspaceID uuid.UUID, subscriptionID string) (*payment.SubscriptionState, error) {
	args := m.Called(ctx, workspaceID, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.SubscriptionState), args.Error(1)
}

// MockWebhookVerifier is a mock implementation of WebhookVerifier
type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Event), args.Error(1)
}

// MockEntitlementCache is a mock implementation of billing.EntitlementCache
type MockEntitlementCache struct {
	mock.Mock
}

func (m *MockEntitlementCache) Get(ctx context.Context, workspaceID uuid.UUID) (*billing.Entitlements, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Entitlements), args.Error(1)
}

func (m *MockEntitlementCache) Set(ctx context.Context, ent *billing.Entitlements, ttl time.Duration) error {
	args := m.Called(ctx, ent, ttl)
	return args.Error(0)
}

func (m *MockEntitlementCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

func (m *MockEntitlementCache) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEntitlementCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockUsageReporter is a mock implementation of UsageReporter
type MockUsageReporter struct {
	mock.Mock
}

func (m *MockUsageReporter) ReportUsage(ctx context.Context, input infrabilling.UsageReportInput) (*infrabilling.UsageReportOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infrabilling.UsageReportOutput), args.Error(1)
}

func (m *MockUsageReporter) GetSubscriptionItemID(ctx context.Context, subscriptionID string) (string, error) {
	args := m.Called(ctx, subscriptionID)
	return args.String(0), args.Error(1)
}
