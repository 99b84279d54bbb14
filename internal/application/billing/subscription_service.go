package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/payment"
)

// PaymentGateway is the slice of the payment adapter the subscription
// flows need. Checkout and portal sessions are hosted by the gateway;
// this service only hands out the redirect URLs.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, input payment.CreateCustomerInput) (*payment.CreateCustomerOutput, error)
	CreateSubscriptionCheckout(ctx context.Context, input payment.SubscriptionCheckoutInput) (*payment.CheckoutSessionOutput, error)
	CreateTopUpCheckout(ctx context.Context, input payment.TopUpCheckoutInput) (*payment.CheckoutSessionOutput, error)
	CreatePortalSession(ctx context.Context, customerID string) (*payment.PortalSessionOutput, error)
	ChangePlan(ctx context.Context, input payment.ChangePlanInput) (*payment.SubscriptionState, error)
	CancelSubscription(ctx context.Context, input payment.CancelSubscriptionInput) (*payment.SubscriptionState, error)
	ResumeSubscription(ctx context.Context, workspaceID uuid.UUID, subscriptionID string) (*payment.SubscriptionState, error)
}

// minTopUpAmount rejects top-ups below the gateway's practical floor,
// in minor currency units
const minTopUpAmount = 500

// StartSubscriptionInput starts a hosted checkout for a plan
type StartSubscriptionInput struct {
	WorkspaceID uuid.UUID
	PlanCode    string
	Email       string
	Name        string
	TrialDays   int
}

// StartTopUpInput starts a hosted checkout for a balance top-up
type StartTopUpInput struct {
	WorkspaceID uuid.UUID
	Email       string
	Name        string
	Amount      int64
	Currency    string
}

// ChangePlanInput moves the workspace subscription to another plan
type ChangePlanInput struct {
	WorkspaceID uuid.UUID
	PlanCode    string
}

// SubscriptionService drives the workspace subscription lifecycle
// against the payment gateway. The local Subscription row is a mirror;
// webhook events reconcile it after every gateway-side change.
type SubscriptionService struct {
	workspaceRepo    identity.WorkspaceRepository
	planRepo         catalog.PlanRepository
	subscriptionRepo billing.SubscriptionRepository
	gateway          PaymentGateway
	cache            billing.EntitlementCache
	logger           *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	workspaceRepo identity.WorkspaceRepository,
	planRepo catalog.PlanRepository,
	subscriptionRepo billing.SubscriptionRepository,
	gateway PaymentGateway,
	cache billing.EntitlementCache,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		workspaceRepo:    workspaceRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		cache:            cache,
		logger:           logger,
	}
}

// StartSubscriptionCheckout creates a hosted checkout session for the
// given plan and returns the redirect URL. The Stripe customer is
// created on first use and remembered on the workspace.
func (s *SubscriptionService) StartSubscriptionCheckout(ctx context.Context, input StartSubscriptionInput) (*payment.CheckoutSessionOutput, error) {
	workspace, err := s.findWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByCode(ctx, input.PlanCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PLAN_NOT_FOUND", "Plan not found")
		}
		s.logger.Error("Failed to find plan", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find plan")
	}
	if plan.StripePriceID == "" {
		return nil, shared.NewDomainError("PLAN_NOT_BILLABLE", "Plan has no billing price configured")
	}

	customerID, err := s.ensureCustomer(ctx, workspace, input.Email, input.Name)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSubscriptionCheckout(ctx, payment.SubscriptionCheckoutInput{
		WorkspaceID: workspace.ID,
		CustomerID:  customerID,
		PriceID:     plan.StripePriceID,
		TrialDays:   input.TrialDays,
		Metadata:    map[string]string{"plan_code": plan.Code},
	})
	if err != nil {
		s.logger.Error("Failed to create subscription checkout",
			zap.String("workspace_id", workspace.ID.String()),
			zap.String("plan_code", plan.Code),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to start checkout session")
	}

	s.logger.Info("Subscription checkout started",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("plan_code", plan.Code),
		zap.String("session_id", session.SessionID))

	return session, nil
}

// StartTopUpCheckout creates a hosted checkout session for a one-time
// balance top-up
func (s *SubscriptionService) StartTopUpCheckout(ctx context.Context, input StartTopUpInput) (*payment.CheckoutSessionOutput, error) {
	if input.Amount < minTopUpAmount {
		return nil, shared.NewDomainError("AMOUNT_TOO_SMALL", "Top-up amount is below the minimum")
	}

	workspace, err := s.findWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, workspace, input.Email, input.Name)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateTopUpCheckout(ctx, payment.TopUpCheckoutInput{
		WorkspaceID: workspace.ID,
		CustomerID:  customerID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: "Balance top-up",
	})
	if err != nil {
		s.logger.Error("Failed to create top-up checkout",
			zap.String("workspace_id", workspace.ID.String()),
			zap.Int64("amount", input.Amount),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to start checkout session")
	}

	return session, nil
}

// OpenBillingPortal returns a hosted billing portal URL for the
// workspace's Stripe customer
func (s *SubscriptionService) OpenBillingPortal(ctx context.Context, workspaceID uuid.UUID) (*payment.PortalSessionOutput, error) {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.StripeCustomerID == "" {
		return nil, shared.NewDomainError("NO_BILLING_ACCOUNT", "Workspace has no billing account yet")
	}

	portal, err := s.gateway.CreatePortalSession(ctx, workspace.StripeCustomerID)
	if err != nil {
		s.logger.Error("Failed to create portal session",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to open billing portal")
	}
	return portal, nil
}

// GetSubscription returns the local subscription mirror
func (s *SubscriptionService) GetSubscription(ctx context.Context, workspaceID uuid.UUID) (*billing.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NO_SUBSCRIPTION", "Workspace has no subscription")
		}
		s.logger.Error("Failed to find subscription", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find subscription")
	}
	return sub, nil
}

// ChangePlan moves the gateway subscription to another plan's price and
// updates the mirror. Proration follows the gateway default.
func (s *SubscriptionService) ChangePlan(ctx context.Context, input ChangePlanInput) (*billing.Subscription, error) {
	sub, err := s.GetSubscription(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByCode(ctx, input.PlanCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PLAN_NOT_FOUND", "Plan not found")
		}
		s.logger.Error("Failed to find plan", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find plan")
	}
	if plan.StripePriceID == "" {
		return nil, shared.NewDomainError("PLAN_NOT_BILLABLE", "Plan has no billing price configured")
	}
	if sub.PlanID == plan.ID {
		return sub, nil
	}

	state, err := s.gateway.ChangePlan(ctx, payment.ChangePlanInput{
		WorkspaceID:       input.WorkspaceID,
		SubscriptionID:    sub.StripeSubscriptionID,
		NewPriceID:        plan.StripePriceID,
		ProrationBehavior: "create_prorations",
	})
	if err != nil {
		s.logger.Error("Failed to change plan at gateway",
			zap.String("workspace_id", input.WorkspaceID.String()),
			zap.String("plan_code", plan.Code),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to change plan")
	}

	sub.PlanID = plan.ID
	if err := sub.SyncFromGateway(state.Status, state.CurrentPeriodStart, state.CurrentPeriodEnd, state.CancelAtPeriodEnd); err != nil {
		return nil, err
	}
	sub.IncrementVersion()
	if err := s.subscriptionRepo.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save subscription mirror", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save subscription")
	}

	if workspace, werr := s.workspaceRepo.FindByID(ctx, input.WorkspaceID); werr == nil {
		workspace.AssignPlan(plan.ID)
		workspace.IncrementVersion()
		if serr := s.workspaceRepo.Save(ctx, workspace); serr != nil {
			s.logger.Warn("Failed to record plan on workspace", zap.Error(serr))
		}
	}

	s.invalidateEntitlements(ctx, input.WorkspaceID)

	s.logger.Info("Plan changed",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("plan_code", plan.Code))

	return sub, nil
}

// CancelSubscription cancels at the gateway. With atPeriodEnd the
// subscription keeps granting until the paid period runs out; otherwise
// it ends immediately.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, workspaceID uuid.UUID, atPeriodEnd bool) (*billing.Subscription, error) {
	sub, err := s.GetSubscription(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if sub.Status == billing.SubscriptionStatusCanceled {
		return nil, shared.NewDomainError("ALREADY_CANCELED", "Subscription is already canceled")
	}

	state, err := s.gateway.CancelSubscription(ctx, payment.CancelSubscriptionInput{
		WorkspaceID:       workspaceID,
		SubscriptionID:    sub.StripeSubscriptionID,
		CancelAtPeriodEnd: atPeriodEnd,
	})
	if err != nil {
		s.logger.Error("Failed to cancel subscription at gateway",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to cancel subscription")
	}

	if state.Status == billing.SubscriptionStatusCanceled {
		at := time.Now()
		if state.CanceledAt != nil {
			at = *state.CanceledAt
		}
		sub.MarkCanceled(at)
	} else {
		if err := sub.SyncFromGateway(state.Status, state.CurrentPeriodStart, state.CurrentPeriodEnd, state.CancelAtPeriodEnd); err != nil {
			return nil, err
		}
	}
	sub.IncrementVersion()
	if err := s.subscriptionRepo.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save subscription mirror", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save subscription")
	}

	s.invalidateEntitlements(ctx, workspaceID)

	s.logger.Info("Subscription canceled",
		zap.String("workspace_id", workspaceID.String()),
		zap.Bool("at_period_end", atPeriodEnd))

	return sub, nil
}

// ResumeSubscription undoes a pending cancel-at-period-end
func (s *SubscriptionService) ResumeSubscription(ctx context.Context, workspaceID uuid.UUID) (*billing.Subscription, error) {
	sub, err := s.GetSubscription(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !sub.CancelAtPeriodEnd {
		return nil, shared.NewDomainError("NOT_CANCELING", "Subscription is not scheduled for cancellation")
	}

	state, err := s.gateway.ResumeSubscription(ctx, workspaceID, sub.StripeSubscriptionID)
	if err != nil {
		s.logger.Error("Failed to resume subscription at gateway",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to resume subscription")
	}

	if err := sub.SyncFromGateway(state.Status, state.CurrentPeriodStart, state.CurrentPeriodEnd, state.CancelAtPeriodEnd); err != nil {
		return nil, err
	}
	sub.IncrementVersion()
	if err := s.subscriptionRepo.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save subscription mirror", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save subscription")
	}

	s.invalidateEntitlements(ctx, workspaceID)

	return sub, nil
}

func (s *SubscriptionService) findWorkspace(ctx context.Context, workspaceID uuid.UUID) (*identity.Workspace, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("WORKSPACE_NOT_FOUND", "Workspace not found")
		}
		s.logger.Error("Failed to find workspace", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find workspace")
	}
	return workspace, nil
}

// ensureCustomer returns the workspace's Stripe customer, creating and
// recording one on first use
func (s *SubscriptionService) ensureCustomer(ctx context.Context, workspace *identity.Workspace, email, name string) (string, error) {
	if workspace.StripeCustomerID != "" {
		return workspace.StripeCustomerID, nil
	}
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Billing email is required")
	}
	if name == "" {
		name = workspace.Name
	}

	created, err := s.gateway.CreateCustomer(ctx, payment.CreateCustomerInput{
		WorkspaceID: workspace.ID,
		Email:       email,
		Name:        name,
	})
	if err != nil {
		s.logger.Error("Failed to create gateway customer",
			zap.String("workspace_id", workspace.ID.String()),
			zap.Error(err))
		return "", shared.NewDomainError("GATEWAY_ERROR", "Failed to create billing account")
	}

	workspace.SetStripeCustomer(created.CustomerID)
	workspace.IncrementVersion()
	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		s.logger.Error("Failed to record customer on workspace",
			zap.String("workspace_id", workspace.ID.String()),
			zap.Error(err))
		return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to save workspace")
	}

	return created.CustomerID, nil
}

func (s *SubscriptionService) invalidateEntitlements(ctx context.Context, workspaceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, workspaceID); err != nil {
		s.logger.Warn("Failed to invalidate entitlement cache",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
	}
}
