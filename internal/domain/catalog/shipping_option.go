package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// ShippingOptionKind distinguishes speed tiers from packaging tiers
type ShippingOptionKind string

const (
	ShippingOptionKindSpeed     ShippingOptionKind = "SPEED"
	ShippingOptionKindPackaging ShippingOptionKind = "PACKAGING"
)

// ShippingOption is a catalog entry for a named delivery-speed or
// packaging tier with a base price. Office locations may override the
// price per location through LocationShippingOption.
type ShippingOption struct {
	shared.BaseAggregateRoot
	Kind        ShippingOptionKind
	Code        string
	Name        string
	Description string
	BasePrice   int64 // minor currency units
	DeletedAt   *time.Time
}

// NewShippingOption creates a new catalog shipping option
func NewShippingOption(kind ShippingOptionKind, code, name string, basePrice int64) (*ShippingOption, error) {
	if kind != ShippingOptionKindSpeed && kind != ShippingOptionKindPackaging {
		return nil, shared.NewDomainError("INVALID_KIND", "Invalid shipping option kind")
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Shipping option code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Shipping option name cannot be empty")
	}
	if basePrice < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}
	return &ShippingOption{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Code:              code,
		Name:              name,
		BasePrice:         basePrice,
	}, nil
}

// SoftDelete marks the option as deleted
func (o *ShippingOption) SoftDelete() error {
	if o.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Shipping option is already deleted")
	}
	now := time.Now()
	o.DeletedAt = &now
	o.UpdatedAt = now
	return nil
}

// LocationShippingOption assigns a shipping option to an office location,
// optionally overriding the catalog base price. One assignment per
// location+option pair; duplicates are rejected by the unique index.
type LocationShippingOption struct {
	shared.BaseEntity
	OfficeLocationID uuid.UUID
	ShippingOptionID uuid.UUID
	PriceOverride    *int64 // minor currency units; nil = use catalog base price
}

// NewLocationShippingOption assigns an option to a location
func NewLocationShippingOption(officeLocationID, shippingOptionID uuid.UUID, priceOverride *int64) (*LocationShippingOption, error) {
	if officeLocationID == uuid.Nil || shippingOptionID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if priceOverride != nil && *priceOverride < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price override cannot be negative")
	}
	return &LocationShippingOption{
		BaseEntity:       shared.NewBaseEntity(),
		OfficeLocationID: officeLocationID,
		ShippingOptionID: shippingOptionID,
		PriceOverride:    priceOverride,
	}, nil
}

// EffectivePrice resolves the location price, falling back to the catalog
// base price when no override is set.
func (l *LocationShippingOption) EffectivePrice(option *ShippingOption) int64 {
	if l.PriceOverride != nil {
		return *l.PriceOverride
	}
	return option.BasePrice
}
