package forwarding

import (
	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/forwarding"
)

// QuoteInput identifies the mail item and destination to price
type QuoteInput struct {
	WorkspaceID       uuid.UUID
	MailItemID        uuid.UUID
	DeliveryAddressID uuid.UUID
}

// OptionQuote is one speed or packaging tier priced for the origin
// office location
type OptionQuote struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
	Fee  int64     `json:"fee"`
}

// QuoteSummary aggregates the rate list for display. Carriers holds the
// distinct carrier names represented, sorted.
type QuoteSummary struct {
	TotalRatesFound  int              `json:"total_rates_found"`
	Cheapest         *forwarding.Rate `json:"cheapest"`
	Fastest          *forwarding.Rate `json:"fastest"`
	Carriers         []string         `json:"carriers"`
	DistinctCarriers int              `json:"distinct_carriers"`
	MeanFee          int64            `json:"mean_fee"`
	MinFee           int64            `json:"min_fee"`
	MaxFee           int64            `json:"max_fee"`
}

// QuoteOutput is the full priced quote. From, To, and Parcel echo the
// shipment parameters so the purchase call can rebuild the identical
// shipment.
type QuoteOutput struct {
	ShipmentID       string                     `json:"shipment_id"`
	Rates            []forwarding.Rate          `json:"rates"`
	Summary          QuoteSummary               `json:"summary"`
	SpeedOptions     []OptionQuote              `json:"speed_options"`
	PackagingOptions []OptionQuote              `json:"packaging_options"`
	From             forwarding.ShipmentAddress `json:"from"`
	To               forwarding.ShipmentAddress `json:"to"`
	Parcel           forwarding.Parcel          `json:"parcel"`
}

// CreateRequestInput carries a user-approved quote into fulfillment.
// The fee override fields take precedence over location and catalog
// pricing; nil falls back to the priced defaults.
type CreateRequestInput struct {
	WorkspaceID       uuid.UUID
	MailItemID        uuid.UUID
	DeliveryAddressID uuid.UUID
	SpeedOptionID     *uuid.UUID
	PackagingOptionID *uuid.UUID
	SelectedRate      forwarding.RateSelection
	SpeedFee          *int64
	PackagingFee      *int64
	ServiceFee        *int64
	Priority          forwarding.Priority
}

// CreateRequestOutput is the created request with its label
type CreateRequestOutput struct {
	Request  *forwarding.ForwardingRequest `json:"request"`
	LabelURL string                        `json:"label_url"`
	Cost     forwarding.CostBreakdown      `json:"cost"`
}

// TrackOutput merges the local request record with the gateway's live
// transit status
type TrackOutput struct {
	Request  *forwarding.ForwardingRequest `json:"request"`
	Tracking *forwarding.TrackingStatus    `json:"tracking"`
}
