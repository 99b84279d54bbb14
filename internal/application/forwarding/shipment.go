package forwarding

import (
	"strings"

	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared/valueobject"
)

// normalizeCountry coerces free-form country input to ISO 3166-1 alpha-2.
// Unrecognized values default to US, the service's home market.
func normalizeCountry(country string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	switch c {
	case "united states", "united states of america", "usa", "u.s.", "u.s.a.":
		return "US"
	case "canada":
		return "CA"
	}
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	return "US"
}

// shipmentAddress converts a stored address to the gateway's shape
func shipmentAddress(a valueobject.Address) forwarding.ShipmentAddress {
	return forwarding.ShipmentAddress{
		Name:    a.Name(),
		Company: a.Company(),
		Street1: a.Street1(),
		Street2: a.Street2(),
		City:    a.City(),
		State:   a.State(),
		Zip:     a.Zip(),
		Country: normalizeCountry(a.Country()),
		Phone:   a.Phone(),
	}
}

// parcelFromDimensions builds the gateway parcel. Carriers reject
// zero or sub-unit dimensions, so every measure is floored to 1.
func parcelFromDimensions(d mail.Dimensions) forwarding.Parcel {
	return forwarding.Parcel{
		LengthIn: atLeastOne(d.Length),
		WidthIn:  atLeastOne(d.Width),
		HeightIn: atLeastOne(d.Height),
		WeightOz: atLeastOne(d.Weight),
	}
}

func atLeastOne(v *float64) float64 {
	if v == nil || *v < 1 {
		return 1
	}
	return *v
}
