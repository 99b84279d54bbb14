package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
)

// PlanService manages the subscription plan catalog and its feature
// grants. Admin-only; workspaces read plans through the public listing.
type PlanService struct {
	planRepo        catalog.PlanRepository
	featureRepo     catalog.FeatureRepository
	planFeatureRepo catalog.PlanFeatureRepository
	logger          *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(
	planRepo catalog.PlanRepository,
	featureRepo catalog.FeatureRepository,
	planFeatureRepo catalog.PlanFeatureRepository,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		planRepo:        planRepo,
		featureRepo:     featureRepo,
		planFeatureRepo: planFeatureRepo,
		logger:          logger,
	}
}

// CreatePlan adds a plan to the catalog
func (s *PlanService) CreatePlan(ctx context.Context, input PlanInput) (*catalog.Plan, error) {
	plan, err := catalog.NewPlan(input.Code, input.Name, input.MonthlyPrice)
	if err != nil {
		return nil, err
	}
	plan.Description = input.Description
	if input.StripePriceID != "" {
		plan.SetStripePrice(input.StripePriceID)
	}

	exists, err := s.planRepo.ExistsByCode(ctx, plan.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Plan with this code already exists")
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Plan with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("Plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("code", plan.Code),
		zap.Int64("monthly_price", plan.MonthlyPrice))

	return plan, nil
}

// UpdatePlan changes a plan's display fields and price. The code is
// immutable; pricing changes only affect new subscriptions.
func (s *PlanService) UpdatePlan(ctx context.Context, planID uuid.UUID, input PlanInput) (*catalog.Plan, error) {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.Update(input.Name, input.Description, input.MonthlyPrice); err != nil {
		return nil, err
	}
	if input.StripePriceID != "" {
		plan.SetStripePrice(input.StripePriceID)
	}
	plan.IncrementVersion()
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan retires a plan. Existing subscriptions keep running; the
// plan just stops being offered.
func (s *PlanService) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := plan.SoftDelete(); err != nil {
		return err
	}
	plan.IncrementVersion()
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return err
	}

	s.logger.Info("Plan retired", zap.String("plan_id", plan.ID.String()), zap.String("code", plan.Code))
	return nil
}

// GetPlan returns one plan by ID
func (s *PlanService) GetPlan(ctx context.Context, planID uuid.UUID) (*catalog.Plan, error) {
	return s.findPlan(ctx, planID)
}

// GetPlanByCode returns one plan by its code
func (s *PlanService) GetPlanByCode(ctx context.Context, code string) (*catalog.Plan, error) {
	plan, err := s.planRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Plan not found")
		}
		return nil, err
	}
	return plan, nil
}

// ListPlans returns a page of plans
func (s *PlanService) ListPlans(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalog.Plan], error) {
	plans, total, err := s.planRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(plans, total, filter.Page, filter.PageSize)
	return &page, nil
}

// AssignFeature grants a feature to a plan, or updates the limit when
// the grant already exists
func (s *PlanService) AssignFeature(ctx context.Context, input AssignFeatureInput) (*catalog.PlanFeature, error) {
	plan, err := s.findPlan(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	feature, err := s.findFeature(ctx, input.FeatureID)
	if err != nil {
		return nil, err
	}

	existing, err := s.planFeatureRepo.FindByPlanAndFeature(ctx, plan.ID, feature.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if input.Limit != nil && *input.Limit < 0 {
			return nil, shared.NewDomainError("INVALID_LIMIT", "Feature limit cannot be negative")
		}
		existing.Limit = input.Limit
		if err := s.planFeatureRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	assignment, err := catalog.NewPlanFeature(plan.ID, feature.ID, input.Limit)
	if err != nil {
		return nil, err
	}
	if err := s.planFeatureRepo.Save(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info("Feature assigned to plan",
		zap.String("plan_id", plan.ID.String()),
		zap.String("feature_code", feature.Code))

	return assignment, nil
}

// RemoveFeature revokes a feature grant from a plan
func (s *PlanService) RemoveFeature(ctx context.Context, planID, featureID uuid.UUID) error {
	assignment, err := s.planFeatureRepo.FindByPlanAndFeature(ctx, planID, featureID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Feature is not assigned to this plan")
		}
		return err
	}
	return s.planFeatureRepo.Delete(ctx, assignment.ID)
}

// ListPlanFeatures returns the plan's grants joined with their features
func (s *PlanService) ListPlanFeatures(ctx context.Context, planID uuid.UUID) ([]PlanFeatureView, error) {
	if _, err := s.findPlan(ctx, planID); err != nil {
		return nil, err
	}
	assignments, err := s.planFeatureRepo.FindByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	views := make([]PlanFeatureView, 0, len(assignments))
	for _, assignment := range assignments {
		feature, err := s.featureRepo.FindByID(ctx, assignment.FeatureID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		views = append(views, PlanFeatureView{Assignment: assignment, Feature: *feature})
	}
	return views, nil
}

func (s *PlanService) findPlan(ctx context.Context, planID uuid.UUID) (*catalog.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Plan not found")
		}
		return nil, err
	}
	if plan.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Plan not found")
	}
	return plan, nil
}

func (s *PlanService) findFeature(ctx context.Context, featureID uuid.UUID) (*catalog.Feature, error) {
	feature, err := s.featureRepo.FindByID(ctx, featureID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Feature not found")
		}
		return nil, err
	}
	if feature.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Feature not found")
	}
	return feature, nil
}
