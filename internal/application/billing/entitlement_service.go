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
)

// usageSaveAttempts bounds the optimistic retry loop around usage
// counter writes
const usageSaveAttempts = 3

// FeatureUsage is one feature's consumption against its plan limit for
// the current period. A nil limit means unlimited.
type FeatureUsage struct {
	FeatureCode string `json:"feature_code"`
	Used        int64  `json:"used"`
	Limit       *int64 `json:"limit"`
	Remaining   *int64 `json:"remaining"`
}

// UsageSummary is the workspace's metered consumption for one period
type UsageSummary struct {
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	Period      string         `json:"period"`
	PlanCode    string         `json:"plan_code"`
	Features    []FeatureUsage `json:"features"`
}

// EntitlementService resolves what a workspace's plan entitles it to and
// meters consumption against those limits. Resolved snapshots are
// cached; plan and subscription changes invalidate them.
type EntitlementService struct {
	workspaceRepo    identity.WorkspaceRepository
	planRepo         catalog.PlanRepository
	featureRepo      catalog.FeatureRepository
	planFeatureRepo  catalog.PlanFeatureRepository
	subscriptionRepo billing.SubscriptionRepository
	usageRepo        billing.UsageRepository
	cache            billing.EntitlementCache
	cacheTTL         time.Duration
	logger           *zap.Logger
}

// NewEntitlementService creates a new EntitlementService
func NewEntitlementService(
	workspaceRepo identity.WorkspaceRepository,
	planRepo catalog.PlanRepository,
	featureRepo catalog.FeatureRepository,
	planFeatureRepo catalog.PlanFeatureRepository,
	subscriptionRepo billing.SubscriptionRepository,
	usageRepo billing.UsageRepository,
	cache billing.EntitlementCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *EntitlementService {
	if cacheTTL <= 0 {
		cacheTTL = billing.DefaultEntitlementCacheConfig().TTL
	}
	return &EntitlementService{
		workspaceRepo:    workspaceRepo,
		planRepo:         planRepo,
		featureRepo:      featureRepo,
		planFeatureRepo:  planFeatureRepo,
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		cache:            cache,
		cacheTTL:         cacheTTL,
		logger:           logger,
	}
}

// Resolve returns the workspace's entitlement snapshot, from cache when
// the cached copy is still fresh
func (s *EntitlementService) Resolve(ctx context.Context, workspaceID uuid.UUID) (*billing.Entitlements, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, workspaceID)
		if err != nil {
			s.logger.Warn("Entitlement cache read failed",
				zap.String("workspace_id", workspaceID.String()),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	ent, err := s.resolve(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ent, s.cacheTTL); err != nil {
			s.logger.Warn("Entitlement cache write failed",
				zap.String("workspace_id", workspaceID.String()),
				zap.Error(err))
		}
	}
	return ent, nil
}

// CheckAndIncrement meters one unit of feature consumption. It fails
// with LIMIT_EXCEEDED when the plan allowance for the current period is
// used up, SUBSCRIPTION_INACTIVE when the subscription no longer grants
// service, and FEATURE_NOT_INCLUDED when the plan lacks the feature.
func (s *EntitlementService) CheckAndIncrement(ctx context.Context, workspaceID uuid.UUID, featureCode string, amount int64) (*billing.UsageRecord, error) {
	if featureCode == "" {
		return nil, shared.NewDomainError("INVALID_FEATURE", "Feature code cannot be empty")
	}
	if amount <= 0 {
		amount = 1
	}

	ent, err := s.Resolve(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ent.Grants() {
		return nil, shared.NewDomainError("SUBSCRIPTION_INACTIVE", "Subscription does not grant service")
	}
	limit, ok := ent.LimitFor(featureCode)
	if !ok {
		return nil, shared.NewDomainError("FEATURE_NOT_INCLUDED", "Plan does not include this feature")
	}

	period := billing.CurrentPeriod()
	for attempt := 0; attempt < usageSaveAttempts; attempt++ {
		record, err := s.loadOrCreateUsage(ctx, workspaceID, featureCode, period)
		if err != nil {
			return nil, err
		}

		if err := record.Increment(amount, limit); err != nil {
			if errors.Is(err, shared.ErrLimitExceeded) {
				s.logger.Info("Feature limit exceeded",
					zap.String("workspace_id", workspaceID.String()),
					zap.String("feature_code", featureCode),
					zap.Int64("used", record.Count),
					zap.Int64p("limit", limit))
			}
			return nil, err
		}

		record.IncrementVersion()
		err = s.usageRepo.Save(ctx, record)
		if err == nil {
			return record, nil
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) || errors.Is(err, shared.ErrAlreadyExists) {
			continue
		}
		s.logger.Error("Failed to save usage record",
			zap.String("workspace_id", workspaceID.String()),
			zap.String("feature_code", featureCode),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record usage")
	}
	return nil, shared.ErrConcurrencyConflict
}

// GetUsage reports current-period consumption for every feature the
// plan includes, whether consumed yet or not
func (s *EntitlementService) GetUsage(ctx context.Context, workspaceID uuid.UUID) (*UsageSummary, error) {
	ent, err := s.Resolve(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	period := billing.CurrentPeriod()
	records, err := s.usageRepo.FindByWorkspacePeriod(ctx, workspaceID, period)
	if err != nil {
		s.logger.Error("Failed to load usage records",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load usage")
	}

	used := make(map[string]int64, len(records))
	for _, r := range records {
		used[r.FeatureCode] = r.Count
	}

	summary := &UsageSummary{
		WorkspaceID: workspaceID,
		Period:      period,
		PlanCode:    ent.PlanCode,
		Features:    make([]FeatureUsage, 0, len(ent.Limits)),
	}
	for code, limit := range ent.Limits {
		fu := FeatureUsage{
			FeatureCode: code,
			Used:        used[code],
			Limit:       limit,
		}
		if limit != nil {
			rest := *limit - fu.Used
			if rest < 0 {
				rest = 0
			}
			fu.Remaining = &rest
		}
		summary.Features = append(summary.Features, fu)
	}
	return summary, nil
}

// Invalidate drops the cached snapshot for a workspace
func (s *EntitlementService) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, workspaceID)
}

// resolve joins workspace, plan, plan features, and the subscription
// mirror into a snapshot. A workspace without a plan gets an empty
// snapshot that includes no features.
func (s *EntitlementService) resolve(ctx context.Context, workspaceID uuid.UUID) (*billing.Entitlements, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("WORKSPACE_NOT_FOUND", "Workspace not found")
		}
		s.logger.Error("Failed to find workspace", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find workspace")
	}

	ent := &billing.Entitlements{
		WorkspaceID: workspaceID,
		Status:      billing.SubscriptionStatusCanceled,
		Limits:      map[string]*int64{},
		RefreshedAt: time.Now(),
	}
	if workspace.PlanID == nil {
		return ent, nil
	}

	plan, err := s.planRepo.FindByID(ctx, *workspace.PlanID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Workspace references missing plan",
				zap.String("workspace_id", workspaceID.String()),
				zap.String("plan_id", workspace.PlanID.String()))
			return ent, nil
		}
		s.logger.Error("Failed to find plan", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find plan")
	}
	ent.PlanCode = plan.Code

	assignments, err := s.planFeatureRepo.FindByPlan(ctx, plan.ID)
	if err != nil {
		s.logger.Error("Failed to load plan features", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load plan features")
	}
	for _, a := range assignments {
		feature, err := s.featureRepo.FindByID(ctx, a.FeatureID)
		if err != nil {
			s.logger.Warn("Plan references missing feature",
				zap.String("plan_id", plan.ID.String()),
				zap.String("feature_id", a.FeatureID.String()))
			continue
		}
		ent.Limits[feature.Code] = a.Limit
	}

	ent.Status = s.subscriptionStatus(ctx, workspaceID, plan)
	return ent, nil
}

// subscriptionStatus determines whether the workspace currently gets
// service. Free plans do not need a gateway subscription; paid plans
// without one are treated as unpaid.
func (s *EntitlementService) subscriptionStatus(ctx context.Context, workspaceID uuid.UUID, plan *catalog.Plan) billing.SubscriptionStatus {
	sub, err := s.subscriptionRepo.FindByWorkspace(ctx, workspaceID)
	if err == nil {
		return sub.Status
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to find subscription",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
	}
	if plan.MonthlyPrice == 0 {
		return billing.SubscriptionStatusActive
	}
	return billing.SubscriptionStatusUnpaid
}

func (s *EntitlementService) loadOrCreateUsage(ctx context.Context, workspaceID uuid.UUID, featureCode, period string) (*billing.UsageRecord, error) {
	record, err := s.usageRepo.FindByWorkspaceFeaturePeriod(ctx, workspaceID, featureCode, period)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to load usage record",
			zap.String("workspace_id", workspaceID.String()),
			zap.String("feature_code", featureCode),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load usage")
	}
	return billing.NewUsageRecord(workspaceID, featureCode, period)
}
