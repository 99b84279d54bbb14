package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// PlanRepository defines persistence operations for plans
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindByCode(ctx context.Context, code string) (*Plan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Plan, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, plan *Plan) error
}

// FeatureRepository defines persistence operations for features
type FeatureRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Feature, error)
	FindByCode(ctx context.Context, code string) (*Feature, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Feature, int64, error)
	Save(ctx context.Context, feature *Feature) error
}

// PlanFeatureRepository defines persistence operations for plan-feature assignments
type PlanFeatureRepository interface {
	FindByPlan(ctx context.Context, planID uuid.UUID) ([]PlanFeature, error)
	FindByPlanAndFeature(ctx context.Context, planID, featureID uuid.UUID) (*PlanFeature, error)
	Save(ctx context.Context, assignment *PlanFeature) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddonRepository defines persistence operations for addons
type AddonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Addon, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Addon, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, addon *Addon) error
}

// CarrierRepository defines persistence operations for carriers
type CarrierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Carrier, error)
	FindByCode(ctx context.Context, code string) (*Carrier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Carrier, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, carrier *Carrier) error
}

// ShippingOptionRepository defines persistence operations for shipping options
type ShippingOptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShippingOption, error)
	FindByKind(ctx context.Context, kind ShippingOptionKind) ([]ShippingOption, error)
	ExistsByCode(ctx context.Context, kind ShippingOptionKind, code string) (bool, error)
	Save(ctx context.Context, option *ShippingOption) error
}

// LocationShippingOptionRepository defines persistence operations for
// location option assignments. Save relies on the unique index over
// (office_location_id, shipping_option_id) to reject duplicates.
type LocationShippingOptionRepository interface {
	FindByLocation(ctx context.Context, officeLocationID uuid.UUID) ([]LocationShippingOption, error)
	FindByLocationAndKind(ctx context.Context, officeLocationID uuid.UUID, kind ShippingOptionKind) ([]LocationShippingOption, []ShippingOption, error)
	FindByLocationAndOption(ctx context.Context, officeLocationID, shippingOptionID uuid.UUID) (*LocationShippingOption, error)
	Save(ctx context.Context, assignment *LocationShippingOption) error
	Delete(ctx context.Context, id uuid.UUID) error
}
