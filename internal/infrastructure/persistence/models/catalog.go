package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/catalog"
)

// PlanModel is the persistence model for the Plan aggregate.
type PlanModel struct {
	AggregateModel
	Code          string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string     `gorm:"type:varchar(200);not null"`
	Description   string     `gorm:"type:text"`
	MonthlyPrice  int64      `gorm:"not null;default:0"`
	StripePriceID string     `gorm:"type:varchar(255)"`
	Active        bool       `gorm:"not null;default:true"`
	DeletedAt     *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the persistence model to a domain Plan
func (m *PlanModel) ToDomain() *catalog.Plan {
	p := &catalog.Plan{
		Code:          m.Code,
		Name:          m.Name,
		Description:   m.Description,
		MonthlyPrice:  m.MonthlyPrice,
		StripePriceID: m.StripePriceID,
		Active:        m.Active,
		DeletedAt:     m.DeletedAt,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Plan
func (m *PlanModel) FromDomain(p *catalog.Plan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.MonthlyPrice = p.MonthlyPrice
	m.StripePriceID = p.StripePriceID
	m.Active = p.Active
	m.DeletedAt = p.DeletedAt
}

// PlanModelFromDomain creates a new persistence model from a domain Plan
func PlanModelFromDomain(p *catalog.Plan) *PlanModel {
	m := &PlanModel{}
	m.FromDomain(p)
	return m
}

// FeatureModel is the persistence model for the Feature aggregate.
type FeatureModel struct {
	AggregateModel
	Code        string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	DeletedAt   *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (FeatureModel) TableName() string {
	return "features"
}

// ToDomain converts the persistence model to a domain Feature
func (m *FeatureModel) ToDomain() *catalog.Feature {
	f := &catalog.Feature{
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		DeletedAt:   m.DeletedAt,
	}
	m.PopulateAggregateRoot(&f.BaseAggregateRoot)
	return f
}

// FromDomain populates the persistence model from a domain Feature
func (m *FeatureModel) FromDomain(f *catalog.Feature) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.Code = f.Code
	m.Name = f.Name
	m.Description = f.Description
	m.DeletedAt = f.DeletedAt
}

// FeatureModelFromDomain creates a new persistence model from a domain Feature
func FeatureModelFromDomain(f *catalog.Feature) *FeatureModel {
	m := &FeatureModel{}
	m.FromDomain(f)
	return m
}

// PlanFeatureModel is the persistence model for plan-feature assignments.
// A NULL limit means unlimited.
type PlanFeatureModel struct {
	BaseModel
	PlanID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_feature,priority:1"`
	FeatureID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_feature,priority:2"`
	Limit     *int64    `gorm:"column:feature_limit"`
}

// TableName returns the table name for GORM
func (PlanFeatureModel) TableName() string {
	return "plan_features"
}

// ToDomain converts the persistence model to a domain PlanFeature
func (m *PlanFeatureModel) ToDomain() *catalog.PlanFeature {
	return &catalog.PlanFeature{
		BaseEntity: m.BaseModel.ToDomain(),
		PlanID:     m.PlanID,
		FeatureID:  m.FeatureID,
		Limit:      m.Limit,
	}
}

// FromDomain populates the persistence model from a domain PlanFeature
func (m *PlanFeatureModel) FromDomain(pf *catalog.PlanFeature) {
	m.FromDomainBaseEntity(pf.BaseEntity)
	m.PlanID = pf.PlanID
	m.FeatureID = pf.FeatureID
	m.Limit = pf.Limit
}

// PlanFeatureModelFromDomain creates a new persistence model from a domain PlanFeature
func PlanFeatureModelFromDomain(pf *catalog.PlanFeature) *PlanFeatureModel {
	m := &PlanFeatureModel{}
	m.FromDomain(pf)
	return m
}

// AddonModel is the persistence model for the Addon aggregate.
type AddonModel struct {
	AggregateModel
	Code      string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Price     int64      `gorm:"not null;default:0"`
	Recurring bool       `gorm:"not null;default:false"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (AddonModel) TableName() string {
	return "addons"
}

// ToDomain converts the persistence model to a domain Addon
func (m *AddonModel) ToDomain() *catalog.Addon {
	a := &catalog.Addon{
		Code:      m.Code,
		Name:      m.Name,
		Price:     m.Price,
		Recurring: m.Recurring,
		DeletedAt: m.DeletedAt,
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Addon
func (m *AddonModel) FromDomain(a *catalog.Addon) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Price = a.Price
	m.Recurring = a.Recurring
	m.DeletedAt = a.DeletedAt
}

// AddonModelFromDomain creates a new persistence model from a domain Addon
func AddonModelFromDomain(a *catalog.Addon) *AddonModel {
	m := &AddonModel{}
	m.FromDomain(a)
	return m
}

// CarrierModel is the persistence model for the Carrier aggregate.
type CarrierModel struct {
	AggregateModel
	Code      string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Active    bool       `gorm:"not null;default:true"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (CarrierModel) TableName() string {
	return "carriers"
}

// ToDomain converts the persistence model to a domain Carrier
func (m *CarrierModel) ToDomain() *catalog.Carrier {
	c := &catalog.Carrier{
		Code:      m.Code,
		Name:      m.Name,
		Active:    m.Active,
		DeletedAt: m.DeletedAt,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Carrier
func (m *CarrierModel) FromDomain(c *catalog.Carrier) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Active = c.Active
	m.DeletedAt = c.DeletedAt
}

// CarrierModelFromDomain creates a new persistence model from a domain Carrier
func CarrierModelFromDomain(c *catalog.Carrier) *CarrierModel {
	m := &CarrierModel{}
	m.FromDomain(c)
	return m
}

// ShippingOptionModel is the persistence model for the ShippingOption aggregate.
// Codes are unique per kind.
type ShippingOptionModel struct {
	AggregateModel
	Kind        catalog.ShippingOptionKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_shipping_option_kind_code,priority:1"`
	Code        string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_shipping_option_kind_code,priority:2"`
	Name        string                     `gorm:"type:varchar(200);not null"`
	Description string                     `gorm:"type:text"`
	BasePrice   int64                      `gorm:"not null;default:0"`
	DeletedAt   *time.Time                 `gorm:"index"`
}

// TableName returns the table name for GORM
func (ShippingOptionModel) TableName() string {
	return "shipping_options"
}

// ToDomain converts the persistence model to a domain ShippingOption
func (m *ShippingOptionModel) ToDomain() *catalog.ShippingOption {
	o := &catalog.ShippingOption{
		Kind:        m.Kind,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		BasePrice:   m.BasePrice,
		DeletedAt:   m.DeletedAt,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain ShippingOption
func (m *ShippingOptionModel) FromDomain(o *catalog.ShippingOption) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Kind = o.Kind
	m.Code = o.Code
	m.Name = o.Name
	m.Description = o.Description
	m.BasePrice = o.BasePrice
	m.DeletedAt = o.DeletedAt
}

// ShippingOptionModelFromDomain creates a new persistence model from a domain ShippingOption
func ShippingOptionModelFromDomain(o *catalog.ShippingOption) *ShippingOptionModel {
	m := &ShippingOptionModel{}
	m.FromDomain(o)
	return m
}

// LocationShippingOptionModel is the persistence model for location option
// assignments. One row per location+option pair.
type LocationShippingOptionModel struct {
	BaseModel
	OfficeLocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_shipping_option,priority:1"`
	ShippingOptionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_shipping_option,priority:2"`
	PriceOverride    *int64
}

// TableName returns the table name for GORM
func (LocationShippingOptionModel) TableName() string {
	return "location_shipping_options"
}

// ToDomain converts the persistence model to a domain LocationShippingOption
func (m *LocationShippingOptionModel) ToDomain() *catalog.LocationShippingOption {
	return &catalog.LocationShippingOption{
		BaseEntity:       m.BaseModel.ToDomain(),
		OfficeLocationID: m.OfficeLocationID,
		ShippingOptionID: m.ShippingOptionID,
		PriceOverride:    m.PriceOverride,
	}
}

// FromDomain populates the persistence model from a domain LocationShippingOption
func (m *LocationShippingOptionModel) FromDomain(l *catalog.LocationShippingOption) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.OfficeLocationID = l.OfficeLocationID
	m.ShippingOptionID = l.ShippingOptionID
	m.PriceOverride = l.PriceOverride
}

// LocationShippingOptionModelFromDomain creates a new persistence model from a domain LocationShippingOption
func LocationShippingOptionModelFromDomain(l *catalog.LocationShippingOption) *LocationShippingOptionModel {
	m := &LocationShippingOptionModel{}
	m.FromDomain(l)
	return m
}
