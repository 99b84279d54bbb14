package catalog

import (
	"strings"
	"time"

	"github.com/mailriver/backend/internal/domain/shared"
)

// Well-known feature codes tracked against plan limits
const (
	FeatureCodeMailScans   = "mail_scans"
	FeatureCodeForwards    = "forwards"
	FeatureCodeRecipients  = "recipients"
	FeatureCodeStorageDays = "storage_days"
)

// Feature is a meterable capability that plans grant in limited quantities
type Feature struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	DeletedAt   *time.Time
}

// NewFeature creates a new feature
func NewFeature(code, name string) (*Feature, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Feature code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Feature name cannot be empty")
	}
	return &Feature{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}

// SoftDelete marks the feature as deleted
func (f *Feature) SoftDelete() error {
	if f.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Feature is already deleted")
	}
	now := time.Now()
	f.DeletedAt = &now
	f.UpdatedAt = now
	return nil
}

// Addon is a one-off or recurring purchasable extra (extra scans, extra
// recipients) priced independently of the plan.
type Addon struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Price     int64 // minor currency units
	Recurring bool
	DeletedAt *time.Time
}

// NewAddon creates a new addon
func NewAddon(code, name string, price int64, recurring bool) (*Addon, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Addon code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Addon name cannot be empty")
	}
	if price < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Addon price cannot be negative")
	}
	return &Addon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Price:             price,
		Recurring:         recurring,
	}, nil
}

// SoftDelete marks the addon as deleted
func (a *Addon) SoftDelete() error {
	if a.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Addon is already deleted")
	}
	now := time.Now()
	a.DeletedAt = &now
	a.UpdatedAt = now
	return nil
}

// Carrier is a shipping carrier known to the platform (display and
// tracking-lookup metadata; rates come from the shipping gateway).
type Carrier struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Active    bool
	DeletedAt *time.Time
}

// NewCarrier creates a new active carrier
func NewCarrier(code, name string) (*Carrier, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Carrier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Carrier name cannot be empty")
	}
	return &Carrier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Active:            true,
	}, nil
}

// SoftDelete marks the carrier as deleted
func (c *Carrier) SoftDelete() error {
	if c.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Carrier is already deleted")
	}
	now := time.Now()
	c.DeletedAt = &now
	c.Active = false
	c.UpdatedAt = now
	return nil
}
