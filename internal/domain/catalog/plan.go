package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// Plan is a subscription plan offered to workspaces
type Plan struct {
	shared.BaseAggregateRoot
	Code          string
	Name          string
	Description   string
	MonthlyPrice  int64 // minor currency units
	StripePriceID string
	Active        bool
	DeletedAt     *time.Time
}

// NewPlan creates a new active plan
func NewPlan(code, name string, monthlyPrice int64) (*Plan, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Plan code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Plan name cannot be empty")
	}
	if monthlyPrice < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Plan price cannot be negative")
	}

	return &Plan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		MonthlyPrice:      monthlyPrice,
		Active:            true,
	}, nil
}

// SetStripePrice links the plan to a payment processor price
func (p *Plan) SetStripePrice(priceID string) {
	p.StripePriceID = priceID
	p.UpdatedAt = time.Now()
}

// Update changes the plan's display fields
func (p *Plan) Update(name, description string, monthlyPrice int64) error {
	if p.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Plan has been deleted")
	}
	if monthlyPrice < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Plan price cannot be negative")
	}
	if name != "" {
		p.Name = name
	}
	p.Description = description
	p.MonthlyPrice = monthlyPrice
	p.UpdatedAt = time.Now()
	return nil
}

// SoftDelete marks the plan as deleted
func (p *Plan) SoftDelete() error {
	if p.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Plan is already deleted")
	}
	now := time.Now()
	p.DeletedAt = &now
	p.Active = false
	p.UpdatedAt = now
	return nil
}

// PlanFeature assigns a feature to a plan with a usage limit.
// A limit of nil means unlimited.
type PlanFeature struct {
	shared.BaseEntity
	PlanID    uuid.UUID
	FeatureID uuid.UUID
	Limit     *int64
}

// NewPlanFeature assigns a feature to a plan
func NewPlanFeature(planID, featureID uuid.UUID, limit *int64) (*PlanFeature, error) {
	if planID == uuid.Nil || featureID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if limit != nil && *limit < 0 {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Feature limit cannot be negative")
	}
	return &PlanFeature{
		BaseEntity: shared.NewBaseEntity(),
		PlanID:     planID,
		FeatureID:  featureID,
		Limit:      limit,
	}, nil
}

// Unlimited returns true when the assignment carries no usage limit
func (pf *PlanFeature) Unlimited() bool {
	return pf.Limit == nil
}
