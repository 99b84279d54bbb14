package forwarding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mailriver/backend/internal/domain/shared"
)

// Gateway errors
var (
	ErrGatewayUnavailable    = shared.NewDomainError("GATEWAY_UNAVAILABLE", "Shipping gateway is unavailable")
	ErrGatewayRequestFailed  = shared.NewDomainError("GATEWAY_REQUEST_FAILED", "Shipping gateway rejected the request")
	ErrShipmentNotFound      = shared.NewDomainError("SHIPMENT_NOT_FOUND", "Shipment not found at the gateway")
	ErrNoRatesReturned       = shared.NewDomainError("NO_RATES", "No shipping rates available for this shipment")
	ErrTrackerNotFound       = shared.NewDomainError("TRACKER_NOT_FOUND", "No tracking information available")
	ErrLabelPurchaseRejected = shared.NewDomainError("LABEL_PURCHASE_REJECTED", "Label purchase was rejected by the gateway")
)

// ShipmentAddress is the gateway-facing postal address
type ShipmentAddress struct {
	Name    string
	Company string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
	Country string // ISO 3166-1 alpha-2
	Phone   string
}

// Parcel carries the physical dimensions handed to the gateway.
// Dimensions are inches, weight is ounces.
type Parcel struct {
	LengthIn float64
	WidthIn  float64
	HeightIn float64
	WeightOz float64
}

// Rate is one priced carrier service quoted by the gateway
type Rate struct {
	RateID       string
	Carrier      string
	Service      string
	Amount       int64 // minor currency units
	Currency     string
	DeliveryDays *int // nil when the carrier gives no estimate
	Raw          json.RawMessage
}

// Quote is the gateway's answer to a shipment creation: an addressable
// shipment plus every rate the carriers offered for it
type Quote struct {
	ShipmentID string
	Rates      []Rate
}

// PurchasedLabel is the result of buying one rate on a shipment
type PurchasedLabel struct {
	ShipmentID   string
	RateID       string
	Carrier      string
	Service      string
	Amount       int64
	Currency     string
	TrackingCode string
	LabelURL     string
	Raw          json.RawMessage
}

// TrackingEvent is one scan in a parcel's transit history
type TrackingEvent struct {
	Status      string
	Message     string
	Location    string
	OccurredAt  time.Time
	CarrierCode string
}

// TrackingStatus is the current state of a parcel in transit
type TrackingStatus struct {
	TrackingCode      string
	Carrier           string
	Status            string
	EstDeliveryDate   *time.Time
	PublicTrackingURL string
	Events            []TrackingEvent
}

// RateGateway is the port to the external shipping-rate aggregator.
// A shipment is quoted once for display and quoted again at purchase
// time; rate IDs are only valid within their own shipment.
type RateGateway interface {
	// CreateShipment registers the parcel and addresses with the gateway
	// and returns every available rate
	CreateShipment(ctx context.Context, from, to ShipmentAddress, parcel Parcel) (*Quote, error)
	// BuyShipment purchases one of a shipment's rates and returns the
	// label and tracking code
	BuyShipment(ctx context.Context, shipmentID, rateID string) (*PurchasedLabel, error)
	// Track fetches transit status for a purchased label
	Track(ctx context.Context, trackingCode, carrier string) (*TrackingStatus, error)
}
