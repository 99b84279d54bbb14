package shipping

import (
	"encoding/json"
)

// easyPostAddress is the wire form of a postal address
type easyPostAddress struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

// easyPostParcel is the wire form of parcel dimensions.
// Length/width/height are inches, weight is ounces.
type easyPostParcel struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// easyPostShipmentRequest is the body of POST /shipments
type easyPostShipmentRequest struct {
	Shipment easyPostShipmentPayload `json:"shipment"`
}

type easyPostShipmentPayload struct {
	ToAddress   easyPostAddress `json:"to_address"`
	FromAddress easyPostAddress `json:"from_address"`
	Parcel      easyPostParcel  `json:"parcel"`
}

// easyPostRate is one carrier rate on a shipment. Monetary fields are
// decimal strings in major units ("12.50").
type easyPostRate struct {
	ID               string `json:"id"`
	Carrier          string `json:"carrier"`
	Service          string `json:"service"`
	Rate             string `json:"rate"`
	Currency         string `json:"currency"`
	DeliveryDays     *int   `json:"delivery_days"`
	EstDeliveryDays  *int   `json:"est_delivery_days"`
	DeliveryDateGTd  bool   `json:"delivery_date_guaranteed"`
	CarrierAccountID string `json:"carrier_account_id"`
}

// easyPostPostageLabel carries the purchased label artifacts
type easyPostPostageLabel struct {
	ID       string `json:"id"`
	LabelURL string `json:"label_url"`
}

// easyPostShipment is the shipment object returned by create and buy
type easyPostShipment struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	TrackingCode string                `json:"tracking_code"`
	Rates        []easyPostRate        `json:"rates"`
	SelectedRate *easyPostRate         `json:"selected_rate"`
	PostageLabel *easyPostPostageLabel `json:"postage_label"`
	Messages     []easyPostMessage     `json:"messages"`
}

// easyPostMessage is a carrier-level warning attached to a shipment
type easyPostMessage struct {
	Carrier string `json:"carrier"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// easyPostBuyRequest is the body of POST /shipments/{id}/buy
type easyPostBuyRequest struct {
	Rate easyPostBuyRate `json:"rate"`
}

type easyPostBuyRate struct {
	ID string `json:"id"`
}

// easyPostTrackerRequest is the body of POST /trackers
type easyPostTrackerRequest struct {
	Tracker easyPostTrackerPayload `json:"tracker"`
}

type easyPostTrackerPayload struct {
	TrackingCode string `json:"tracking_code"`
	Carrier      string `json:"carrier,omitempty"`
}

// easyPostTracker is the tracker object
type easyPostTracker struct {
	ID              string                  `json:"id"`
	TrackingCode    string                  `json:"tracking_code"`
	Carrier         string                  `json:"carrier"`
	Status          string                  `json:"status"`
	EstDeliveryDate *string                 `json:"est_delivery_date"`
	PublicURL       string                  `json:"public_url"`
	TrackingDetails []easyPostTrackingEvent `json:"tracking_details"`
}

// easyPostTrackingEvent is one scan in the tracker history
type easyPostTrackingEvent struct {
	Status           string                    `json:"status"`
	Message          string                    `json:"message"`
	StatusDetail     string                    `json:"status_detail"`
	DateTime         string                    `json:"datetime"`
	TrackingLocation *easyPostTrackingLocation `json:"tracking_location"`
}

type easyPostTrackingLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zip     string `json:"zip"`
}

// easyPostError is the error envelope EasyPost returns on 4xx/5xx
type easyPostError struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	} `json:"error"`
}
