package valueobject

import (
	"errors"
	"strings"
)

// Address is a value object representing a physical postal address used for
// shipment origins and destinations. It is immutable.
type Address struct {
	name    string
	company string
	street1 string
	street2 string
	city    string
	state   string
	zip     string
	country string
	phone   string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithCompany sets the company name on the address
func WithCompany(company string) AddressOption {
	return func(a *Address) {
		a.company = strings.TrimSpace(company)
	}
}

// WithStreet2 sets the second street line
func WithStreet2(street2 string) AddressOption {
	return func(a *Address) {
		a.street2 = strings.TrimSpace(street2)
	}
}

// WithPhone sets the phone number on the address
func WithPhone(phone string) AddressOption {
	return func(a *Address) {
		a.phone = strings.TrimSpace(phone)
	}
}

// NewAddress creates a new Address. Name, street1, city, and country are
// required; the rest is optional.
func NewAddress(name, street1, city, state, zip, country string, opts ...AddressOption) (Address, error) {
	name = strings.TrimSpace(name)
	street1 = strings.TrimSpace(street1)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	zip = strings.TrimSpace(zip)
	country = strings.TrimSpace(country)

	if name == "" {
		return Address{}, errors.New("address name cannot be empty")
	}
	if street1 == "" {
		return Address{}, errors.New("address street cannot be empty")
	}
	if city == "" {
		return Address{}, errors.New("address city cannot be empty")
	}
	if country == "" {
		country = "US"
	}

	addr := Address{
		name:    name,
		street1: street1,
		city:    city,
		state:   state,
		zip:     zip,
		country: country,
	}
	for _, opt := range opts {
		opt(&addr)
	}
	return addr, nil
}

// ReconstituteAddress rebuilds an Address from stored fields without
// re-running creation validation. Persistence only; rows were validated
// when first created.
func ReconstituteAddress(name, company, street1, street2, city, state, zip, country, phone string) Address {
	return Address{
		name:    name,
		company: company,
		street1: street1,
		street2: street2,
		city:    city,
		state:   state,
		zip:     zip,
		country: country,
		phone:   phone,
	}
}

// Name returns the addressee name
func (a Address) Name() string { return a.name }

// Company returns the company name
func (a Address) Company() string { return a.company }

// Street1 returns the first street line
func (a Address) Street1() string { return a.street1 }

// Street2 returns the second street line
func (a Address) Street2() string { return a.street2 }

// City returns the city
func (a Address) City() string { return a.city }

// State returns the state or province
func (a Address) State() string { return a.state }

// Zip returns the postal code
func (a Address) Zip() string { return a.zip }

// Country returns the country as provided (normalized to ISO-2 at the
// shipping gateway boundary)
func (a Address) Country() string { return a.country }

// Phone returns the phone number
func (a Address) Phone() string { return a.phone }

// String returns a single-line rendering of the address
func (a Address) String() string {
	parts := []string{a.street1}
	if a.street2 != "" {
		parts = append(parts, a.street2)
	}
	parts = append(parts, a.city)
	if a.state != "" {
		parts = append(parts, a.state)
	}
	if a.zip != "" {
		parts = append(parts, a.zip)
	}
	parts = append(parts, a.country)
	return strings.Join(parts, ", ")
}
