package catalog

import (
	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/catalog"
)

// PlanInput carries the fields for creating or updating a plan
type PlanInput struct {
	Code          string
	Name          string
	Description   string
	MonthlyPrice  int64 // minor currency units
	StripePriceID string
}

// AssignFeatureInput assigns a feature to a plan. A nil limit grants
// unlimited usage.
type AssignFeatureInput struct {
	PlanID    uuid.UUID
	FeatureID uuid.UUID
	Limit     *int64
}

// PlanFeatureView pairs an assignment with its feature for display
type PlanFeatureView struct {
	Assignment catalog.PlanFeature
	Feature    catalog.Feature
}

// FeatureInput carries the fields for creating a feature
type FeatureInput struct {
	Code        string
	Name        string
	Description string
}

// AddonInput carries the fields for creating an addon
type AddonInput struct {
	Code      string
	Name      string
	Price     int64 // minor currency units
	Recurring bool
}

// CarrierInput carries the fields for creating a carrier
type CarrierInput struct {
	Code string
	Name string
}

// ShippingOptionInput carries the fields for creating a shipping option
type ShippingOptionInput struct {
	Kind        catalog.ShippingOptionKind
	Code        string
	Name        string
	Description string
	BasePrice   int64 // minor currency units
}

// AssignLocationOptionInput assigns a shipping option to an office
// location. A nil override uses the catalog base price.
type AssignLocationOptionInput struct {
	OfficeLocationID uuid.UUID
	ShippingOptionID uuid.UUID
	PriceOverride    *int64 // minor currency units
}

// LocationOptionView pairs an assignment with its option and the price
// that applies at the location
type LocationOptionView struct {
	Assignment catalog.LocationShippingOption
	Option     catalog.ShippingOption
	Price      int64 // minor currency units
}
