package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// UsageRecord counts consumption of one metered feature by a workspace
// within one calendar-month period. Periods are keyed "YYYY-MM" in UTC.
type UsageRecord struct {
	shared.WorkspaceAggregateRoot
	FeatureCode string
	Period      string
	Count       int64
}

// PeriodKey formats a time as the usage period it falls into
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CurrentPeriod returns the period key for now
func CurrentPeriod() string {
	return PeriodKey(time.Now())
}

// NewUsageRecord creates a zero counter for a feature and period
func NewUsageRecord(workspaceID uuid.UUID, featureCode, period string) (*UsageRecord, error) {
	if featureCode == "" {
		return nil, shared.NewDomainError("INVALID_FEATURE", "Feature code cannot be empty")
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Invalid usage period: %s", period))
	}
	return &UsageRecord{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		FeatureCode:            featureCode,
		Period:                 period,
		Count:                  0,
	}, nil
}

// Increment adds usage. limit is the plan allowance for the feature; nil
// means unlimited. The increment is rejected when it would push the count
// past the limit.
func (u *UsageRecord) Increment(amount int64, limit *int64) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Usage increment must be positive")
	}
	if limit != nil && u.Count+amount > *limit {
		return shared.ErrLimitExceeded
	}
	u.Count += amount
	u.UpdatedAt = time.Now()
	return nil
}

// Remaining reports how much allowance is left; nil means unlimited
func (u *UsageRecord) Remaining(limit *int64) *int64 {
	if limit == nil {
		return nil
	}
	rest := *limit - u.Count
	if rest < 0 {
		rest = 0
	}
	return &rest
}
