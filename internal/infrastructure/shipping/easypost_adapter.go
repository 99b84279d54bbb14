package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mailriver/backend/internal/domain/forwarding"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB

	// minParcelDimension is the floor applied to every parcel dimension;
	// carriers reject zero or sub-inch values
	minParcelDimension = 1.0
)

// EasyPostAdapter implements forwarding.RateGateway against the EasyPost API
type EasyPostAdapter struct {
	config     *EasyPostConfig
	httpClient *http.Client
}

// NewEasyPostAdapter creates a new EasyPost adapter with the given configuration
func NewEasyPostAdapter(config *EasyPostConfig) (*EasyPostAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &EasyPostAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// CreateShipment registers the parcel with EasyPost and returns all rates
func (a *EasyPostAdapter) CreateShipment(ctx context.Context, from, to forwarding.ShipmentAddress, parcel forwarding.Parcel) (*forwarding.Quote, error) {
	reqBody := easyPostShipmentRequest{
		Shipment: easyPostShipmentPayload{
			ToAddress:   toWireAddress(to),
			FromAddress: toWireAddress(from),
			Parcel: easyPostParcel{
				Length: clampDimension(parcel.LengthIn),
				Width:  clampDimension(parcel.WidthIn),
				Height: clampDimension(parcel.HeightIn),
				Weight: clampDimension(parcel.WeightOz),
			},
		},
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/shipments", reqBody)
	if err != nil {
		return nil, err
	}

	var shipment easyPostShipment
	if err := json.Unmarshal(respBody, &shipment); err != nil {
		return nil, fmt.Errorf("easypost: failed to parse shipment response: %w", err)
	}

	if shipment.ID == "" {
		return nil, forwarding.ErrGatewayRequestFailed
	}
	if len(shipment.Rates) == 0 {
		return nil, forwarding.ErrNoRatesReturned
	}

	quote := &forwarding.Quote{
		ShipmentID: shipment.ID,
		Rates:      make([]forwarding.Rate, 0, len(shipment.Rates)),
	}
	for _, r := range shipment.Rates {
		rate, err := toDomainRate(r)
		if err != nil {
			// skip rates with unparseable amounts rather than failing the quote
			continue
		}
		quote.Rates = append(quote.Rates, rate)
	}
	if len(quote.Rates) == 0 {
		return nil, forwarding.ErrNoRatesReturned
	}

	return quote, nil
}

// BuyShipment purchases one rate on a shipment
func (a *EasyPostAdapter) BuyShipment(ctx context.Context, shipmentID, rateID string) (*forwarding.PurchasedLabel, error) {
	if shipmentID == "" || rateID == "" {
		return nil, forwarding.ErrGatewayRequestFailed
	}

	reqBody := easyPostBuyRequest{Rate: easyPostBuyRate{ID: rateID}}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/shipments/"+shipmentID+"/buy", reqBody)
	if err != nil {
		return nil, err
	}

	var shipment easyPostShipment
	if err := json.Unmarshal(respBody, &shipment); err != nil {
		return nil, fmt.Errorf("easypost: failed to parse buy response: %w", err)
	}

	if shipment.SelectedRate == nil || shipment.TrackingCode == "" {
		return nil, forwarding.ErrLabelPurchaseRejected
	}

	amount, err := parseMinorUnits(shipment.SelectedRate.Rate)
	if err != nil {
		return nil, fmt.Errorf("easypost: invalid selected rate amount %q: %w", shipment.SelectedRate.Rate, err)
	}

	label := &forwarding.PurchasedLabel{
		ShipmentID:   shipment.ID,
		RateID:       shipment.SelectedRate.ID,
		Carrier:      shipment.SelectedRate.Carrier,
		Service:      shipment.SelectedRate.Service,
		Amount:       amount,
		Currency:     shipment.SelectedRate.Currency,
		TrackingCode: shipment.TrackingCode,
	}
	if shipment.PostageLabel != nil {
		label.LabelURL = shipment.PostageLabel.LabelURL
	}
	if raw, err := json.Marshal(shipment.SelectedRate); err == nil {
		label.Raw = raw
	}

	return label, nil
}

// Track fetches transit status for a tracking code
func (a *EasyPostAdapter) Track(ctx context.Context, trackingCode, carrier string) (*forwarding.TrackingStatus, error) {
	if trackingCode == "" {
		return nil, forwarding.ErrTrackerNotFound
	}

	reqBody := easyPostTrackerRequest{
		Tracker: easyPostTrackerPayload{
			TrackingCode: trackingCode,
			Carrier:      carrier,
		},
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/trackers", reqBody)
	if err != nil {
		return nil, err
	}

	var tracker easyPostTracker
	if err := json.Unmarshal(respBody, &tracker); err != nil {
		return nil, fmt.Errorf("easypost: failed to parse tracker response: %w", err)
	}
	if tracker.TrackingCode == "" {
		return nil, forwarding.ErrTrackerNotFound
	}

	status := &forwarding.TrackingStatus{
		TrackingCode:      tracker.TrackingCode,
		Carrier:           tracker.Carrier,
		Status:            tracker.Status,
		PublicTrackingURL: tracker.PublicURL,
		Events:            make([]forwarding.TrackingEvent, 0, len(tracker.TrackingDetails)),
	}
	if tracker.EstDeliveryDate != nil && *tracker.EstDeliveryDate != "" {
		if est, err := time.Parse(time.RFC3339, *tracker.EstDeliveryDate); err == nil {
			status.EstDeliveryDate = &est
		}
	}
	for _, detail := range tracker.TrackingDetails {
		event := forwarding.TrackingEvent{
			Status:      detail.Status,
			Message:     detail.Message,
			CarrierCode: detail.StatusDetail,
		}
		if occurred, err := time.Parse(time.RFC3339, detail.DateTime); err == nil {
			event.OccurredAt = occurred
		}
		if detail.TrackingLocation != nil {
			event.Location = formatLocation(detail.TrackingLocation)
		}
		status.Events = append(status.Events, event)
	}

	return status, nil
}

// doRequest performs an authenticated request against the EasyPost API.
// Server errors and transport failures are retried up to MaxRetries.
func (a *EasyPostAdapter) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("easypost: failed to marshal request: %w", err)
	}

	url := a.config.APIBaseURL + path

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("easypost: failed to create request: %w", err)
		}
		// EasyPost authenticates with the API key as basic-auth username
		req.SetBasicAuth(a.config.APIKey, "")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", forwarding.ErrGatewayUnavailable, err)
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("easypost: failed to read response: %w", readErr)
			continue
		}

		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: HTTP %d", forwarding.ErrGatewayUnavailable, resp.StatusCode)
			continue
		case resp.StatusCode == http.StatusNotFound:
			return nil, forwarding.ErrShipmentNotFound
		case resp.StatusCode >= 400:
			var apiErr easyPostError
			if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
				return nil, fmt.Errorf("%w: %s - %s", forwarding.ErrGatewayRequestFailed, apiErr.Error.Code, apiErr.Error.Message)
			}
			return nil, fmt.Errorf("%w: HTTP %d", forwarding.ErrGatewayRequestFailed, resp.StatusCode)
		}

		return respBody, nil
	}

	return nil, lastErr
}

// toWireAddress converts a domain address to the wire form
func toWireAddress(addr forwarding.ShipmentAddress) easyPostAddress {
	return easyPostAddress{
		Name:    addr.Name,
		Company: addr.Company,
		Street1: addr.Street1,
		Street2: addr.Street2,
		City:    addr.City,
		State:   addr.State,
		Zip:     addr.Zip,
		Country: NormalizeCountry(addr.Country),
		Phone:   addr.Phone,
	}
}

// toDomainRate converts a wire rate to the domain form
func toDomainRate(r easyPostRate) (forwarding.Rate, error) {
	amount, err := parseMinorUnits(r.Rate)
	if err != nil {
		return forwarding.Rate{}, err
	}

	rate := forwarding.Rate{
		RateID:       r.ID,
		Carrier:      r.Carrier,
		Service:      r.Service,
		Amount:       amount,
		Currency:     r.Currency,
		DeliveryDays: r.DeliveryDays,
	}
	if rate.DeliveryDays == nil {
		rate.DeliveryDays = r.EstDeliveryDays
	}
	if raw, err := json.Marshal(r); err == nil {
		rate.Raw = raw
	}
	return rate, nil
}

// parseMinorUnits converts a decimal major-unit string ("12.50") to minor
// units (1250). Half-cents round away from zero.
func parseMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// clampDimension floors a parcel dimension to the carrier minimum
func clampDimension(v float64) float64 {
	if v < minParcelDimension {
		return minParcelDimension
	}
	return v
}

// countryAliases maps common long-form country names to ISO 3166-1 alpha-2
var countryAliases = map[string]string{
	"USA":            "US",
	"UNITED STATES":  "US",
	"CANADA":         "CA",
	"UNITED KINGDOM": "GB",
	"UK":             "GB",
	"AUSTRALIA":      "AU",
	"GERMANY":        "DE",
	"FRANCE":         "FR",
	"JAPAN":          "JP",
	"MEXICO":         "MX",
}

// NormalizeCountry maps a country value to ISO 3166-1 alpha-2. Anything
// not a known alias or a two-letter code defaults to US, the home market.
func NormalizeCountry(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if alias, ok := countryAliases[c]; ok {
		return alias
	}
	if len(c) == 2 {
		return c
	}
	return "US"
}

// formatLocation renders a tracking location as "City, ST"
func formatLocation(loc *easyPostTrackingLocation) string {
	parts := make([]string, 0, 2)
	if loc.City != "" {
		parts = append(parts, loc.City)
	}
	if loc.State != "" {
		parts = append(parts, loc.State)
	}
	return strings.Join(parts, ", ")
}

// Ensure EasyPostAdapter implements the gateway port
var _ forwarding.RateGateway = (*EasyPostAdapter)(nil)
