package scheduler

import (
	"context"

	"go.uber.org/zap"

	billingapp "github.com/mailriver/backend/internal/application/billing"
)

// UsageReportingExecutor runs one usage-reporting pass per job
type UsageReportingExecutor struct {
	reportingService *billingapp.UsageReportingService
	logger           *zap.Logger
}

// NewUsageReportingExecutor creates a new UsageReportingExecutor
func NewUsageReportingExecutor(reportingService *billingapp.UsageReportingService, logger *zap.Logger) *UsageReportingExecutor {
	return &UsageReportingExecutor{reportingService: reportingService, logger: logger}
}

// Execute reports the job's workspace usage to the payment gateway
func (e *UsageReportingExecutor) Execute(ctx context.Context, job *Job) error {
	summary, err := e.reportingService.ReportWorkspaceUsage(ctx, job.WorkspaceID, job.Period)
	if err != nil {
		return err
	}

	e.logger.Debug("Usage reported",
		zap.String("workspace_id", summary.WorkspaceID.String()),
		zap.String("period", summary.Period),
		zap.Int("reported", summary.Reported),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}
