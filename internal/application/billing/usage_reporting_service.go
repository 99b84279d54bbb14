package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/domain/shared"
	infrabilling "github.com/mailriver/backend/internal/infrastructure/billing"
)

// UsageReporter is the slice of the metered-billing adapter the
// reporting job needs
type UsageReporter interface {
	ReportUsage(ctx context.Context, input infrabilling.UsageReportInput) (*infrabilling.UsageReportOutput, error)
	GetSubscriptionItemID(ctx context.Context, subscriptionID string) (string, error)
}

// UsageReportSummary is the outcome of one reporting pass for a
// workspace
type UsageReportSummary struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Period      string    `json:"period"`
	Reported    int       `json:"reported"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
}

// UsageReportingService pushes per-period usage counters to the payment
// gateway for metered billing. Reports use action=set with a
// deterministic idempotency key, so re-running a pass overwrites the
// same gateway record instead of double-counting.
type UsageReportingService struct {
	subscriptionRepo billing.SubscriptionRepository
	usageRepo        billing.UsageRepository
	reporter         UsageReporter
	logger           *zap.Logger
}

// NewUsageReportingService creates a new UsageReportingService
func NewUsageReportingService(
	subscriptionRepo billing.SubscriptionRepository,
	usageRepo billing.UsageRepository,
	reporter UsageReporter,
	logger *zap.Logger,
) *UsageReportingService {
	return &UsageReportingService{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		reporter:         reporter,
		logger:           logger,
	}
}

// ReportWorkspaceUsage reports one workspace's counters for a period.
// Period defaults to the current one when empty.
func (s *UsageReportingService) ReportWorkspaceUsage(ctx context.Context, workspaceID uuid.UUID, period string) (*UsageReportSummary, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if period == "" {
		period = billing.CurrentPeriod()
	}

	sub, err := s.subscriptionRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NO_SUBSCRIPTION", "Workspace has no subscription")
		}
		s.logger.Error("Failed to find subscription", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find subscription")
	}
	if !sub.IsActive() {
		return nil, shared.NewDomainError("SUBSCRIPTION_INACTIVE", "Subscription does not grant service")
	}

	itemID, err := s.reporter.GetSubscriptionItemID(ctx, sub.StripeSubscriptionID)
	if err != nil {
		s.logger.Error("Failed to resolve subscription item",
			zap.String("workspace_id", workspaceID.String()),
			zap.String("subscription_id", sub.StripeSubscriptionID),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Failed to resolve subscription item")
	}

	records, err := s.usageRepo.FindByWorkspacePeriod(ctx, workspaceID, period)
	if err != nil {
		s.logger.Error("Failed to load usage records",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load usage")
	}

	summary := &UsageReportSummary{WorkspaceID: workspaceID, Period: period}
	reportedAt := time.Now()

	for _, record := range records {
		if record.Count == 0 {
			summary.Skipped++
			continue
		}

		_, err := s.reporter.ReportUsage(ctx, infrabilling.UsageReportInput{
			WorkspaceID:        workspaceID,
			SubscriptionItemID: itemID,
			Quantity:           record.Count,
			Timestamp:          reportedAt,
			Action:             "set",
			IdempotencyKey:     infrabilling.GenerateIdempotencyKey(workspaceID, itemID, record.FeatureCode, periodAnchor(period)),
		})
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed++
			s.logger.Warn("Failed to report usage record",
				zap.String("workspace_id", workspaceID.String()),
				zap.String("feature_code", record.FeatureCode),
				zap.Error(err))
			continue
		}
		summary.Reported++
	}

	s.logger.Info("Usage reported",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("period", period),
		zap.Int("reported", summary.Reported),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

// periodAnchor pins the idempotency key to the first instant of the
// period so every pass within a period generates the same key per
// feature
func periodAnchor(period string) time.Time {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return t.UTC()
}
