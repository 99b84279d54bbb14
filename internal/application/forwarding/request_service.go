package forwarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/config"
)

// RequestService turns an approved quote into a purchased label and a
// billable forwarding request.
//
// The request row is written as a PENDING intent before the gateway
// purchase, so a crash between purchase and persistence leaves a findable
// record instead of an orphaned label. The balance charge travels through
// the outbox in the same transaction that records the purchase; it is
// retried with backoff and keyed by the request ID so it can neither be
// lost nor applied twice.
type RequestService struct {
	mailItemRepo       mail.MailItemRepository
	locationRepo       mail.OfficeLocationRepository
	addressRepo        mail.DeliveryAddressRepository
	optionRepo         catalog.ShippingOptionRepository
	locationOptionRepo catalog.LocationShippingOptionRepository
	requestRepo        forwarding.Repository
	gateway            forwarding.RateGateway
	config             config.ForwardingConfig
	logger             *zap.Logger
}

// NewRequestService creates a new forwarding request service
func NewRequestService(
	mailItemRepo mail.MailItemRepository,
	locationRepo mail.OfficeLocationRepository,
	addressRepo mail.DeliveryAddressRepository,
	optionRepo catalog.ShippingOptionRepository,
	locationOptionRepo catalog.LocationShippingOptionRepository,
	requestRepo forwarding.Repository,
	gateway forwarding.RateGateway,
	cfg config.ForwardingConfig,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		mailItemRepo:       mailItemRepo,
		locationRepo:       locationRepo,
		addressRepo:        addressRepo,
		optionRepo:         optionRepo,
		locationOptionRepo: locationOptionRepo,
		requestRepo:        requestRepo,
		gateway:            gateway,
		config:             cfg,
		logger:             logger,
	}
}

// CreateForwardingRequest re-quotes, validates, and purchases the selected
// rate, then records the request and enqueues the balance charge.
func (s *RequestService) CreateForwardingRequest(ctx context.Context, input CreateRequestInput) (*CreateRequestOutput, error) {
	item, err := s.mailItemRepo.FindByIDForWorkspace(ctx, input.WorkspaceID, input.MailItemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Mail item not found")
		}
		return nil, err
	}
	if err := item.CanForward(); err != nil {
		return nil, err
	}
	if !item.Dimensions.Complete() {
		return nil, shared.NewDomainError("DIMENSIONS_REQUIRED", "Mail item dimensions are required for forwarding")
	}

	address, err := s.addressRepo.FindByIDForWorkspace(ctx, input.WorkspaceID, input.DeliveryAddressID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Delivery address not found")
		}
		return nil, err
	}

	location, err := s.locationRepo.FindByID(ctx, item.OfficeLocationID)
	if err != nil {
		return nil, err
	}

	speedFee, err := s.resolveOptionFee(ctx, location.ID, input.SpeedOptionID, input.SpeedFee)
	if err != nil {
		return nil, err
	}
	packagingFee, err := s.resolveOptionFee(ctx, location.ID, input.PackagingOptionID, input.PackagingFee)
	if err != nil {
		return nil, err
	}
	serviceFee := s.config.ServiceFee
	if input.ServiceFee != nil {
		serviceFee = *input.ServiceFee
	}

	// The customer is charged the fee they approved, not the fresh quote
	cost, err := forwarding.NewCostBreakdown(input.SelectedRate.Fee, speedFee, packagingFee, serviceFee)
	if err != nil {
		return nil, err
	}

	// Write-ahead intent: the PENDING row exists before any gateway
	// purchase, so an irreversible external charge always has a local
	// record to reconcile against
	req, err := forwarding.NewForwardingRequest(
		input.WorkspaceID, input.MailItemID, item.MailboxID, item.OfficeLocationID, input.DeliveryAddressID,
		input.SpeedOptionID, input.PackagingOptionID,
		input.SelectedRate, cost, input.Priority,
	)
	if err != nil {
		return nil, err
	}
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return nil, err
	}

	quote, err := s.gateway.CreateShipment(ctx,
		shipmentAddress(location.Address),
		shipmentAddress(address.Address),
		parcelFromDimensions(item.Dimensions))
	if err != nil {
		return nil, s.failRequest(ctx, req, fmt.Sprintf("re-quote failed: %v", err),
			shared.NewDomainError("GATEWAY_ERROR", fmt.Sprintf("Re-quote failed: %v", err)))
	}

	matched := matchRate(quote.Rates, input.SelectedRate)
	if matched == nil {
		return nil, s.failRequest(ctx, req, "selected rate no longer offered",
			shared.NewDomainError("RATE_UNAVAILABLE", "Selected shipping option is no longer available"))
	}

	if drift := absDiff(matched.Amount, input.SelectedRate.Fee); drift > s.config.PriceTolerance {
		reason := fmt.Sprintf("price has changed from %d to %d", input.SelectedRate.Fee, matched.Amount)
		return nil, s.failRequest(ctx, req, reason,
			shared.NewDomainError("PRICE_CHANGED", "Price has changed from "+
				formatMinorUnits(input.SelectedRate.Fee)+" to "+formatMinorUnits(matched.Amount)))
	}

	label, err := s.gateway.BuyShipment(ctx, quote.ShipmentID, matched.RateID)
	if err != nil {
		reason := fmt.Sprintf("label purchase failed: %v", err)
		return nil, s.failRequest(ctx, req, reason,
			shared.NewDomainError("LABEL_PURCHASE_FAILED", "Label purchase failed: "+err.Error()))
	}

	if err := req.AttachLabel(label.ShipmentID, label.RateID, label.TrackingCode, label.LabelURL, matched.Raw); err != nil {
		return nil, err
	}
	req.IncrementVersion()

	chargeEntry, err := s.chargeOutboxEntry(req)
	if err != nil {
		return nil, err
	}
	if err := s.requestRepo.SaveWithOutbox(ctx, req, chargeEntry); err != nil {
		return nil, err
	}

	// Marking the item forwarded is best-effort: the label is bought
	// and the request recorded, so a failure here is only logged
	if err := item.MarkForwarded(); err == nil {
		item.IncrementVersion()
		if err := s.mailItemRepo.Save(ctx, item); err != nil {
			s.logger.Error("Failed to mark mail item forwarded",
				zap.String("mail_item_id", item.ID.String()),
				zap.String("request_id", req.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Forwarding request created",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("request_id", req.ID.String()),
		zap.String("carrier", req.Carrier),
		zap.String("tracking_code", req.TrackingCode),
		zap.Int64("total_cost", req.Cost.Total))

	return &CreateRequestOutput{
		Request:  req,
		LabelURL: req.LabelURL,
		Cost:     req.Cost,
	}, nil
}

// failRequest marks the intent row FAILED with the reason and returns the
// caller-facing error. The FAILED row is the audit trail for a purchase
// that never happened.
func (s *RequestService) failRequest(ctx context.Context, req *forwarding.ForwardingRequest, reason string, userErr error) error {
	if err := req.MarkFailed(reason); err != nil {
		s.logger.Error("Could not mark forwarding request failed",
			zap.String("request_id", req.ID.String()), zap.Error(err))
		return userErr
	}
	req.IncrementVersion()
	if err := s.requestRepo.Save(ctx, req); err != nil {
		s.logger.Error("Could not persist failed forwarding request",
			zap.String("request_id", req.ID.String()), zap.Error(err))
	}
	return userErr
}

// chargeOutboxEntry builds the balance-deduction task. The event ID is
// derived from the request ID so a re-enqueue of the same request hits the
// outbox unique index instead of double-charging.
func (s *RequestService) chargeOutboxEntry(req *forwarding.ForwardingRequest) (*shared.OutboxEntry, error) {
	event := forwarding.NewChargeDueEvent(req, fmt.Sprintf("Forwarding via %s %s", req.Carrier, req.Service))
	event.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("forwarding.charge:"+req.ID.String()))

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return shared.NewOutboxEntry(req.WorkspaceID, event, payload), nil
}

// resolveOptionFee prices an optional speed/packaging choice. A caller
// override wins outright, then the location's price override, then the
// catalog base price; no option and no override means no fee. The option
// is still looked up when one is named, so an override cannot smuggle in
// an unknown option ID.
func (s *RequestService) resolveOptionFee(ctx context.Context, locationID uuid.UUID, optionID *uuid.UUID, override *int64) (int64, error) {
	if optionID == nil {
		if override != nil {
			return *override, nil
		}
		return 0, nil
	}
	option, err := s.optionRepo.FindByID(ctx, *optionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, shared.NewDomainError("NOT_FOUND", "Shipping option not found")
		}
		return 0, err
	}
	if override != nil {
		return *override, nil
	}
	assignment, err := s.locationOptionRepo.FindByLocationAndOption(ctx, locationID, option.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return option.BasePrice, nil
		}
		return 0, err
	}
	return assignment.EffectivePrice(option), nil
}

// matchRate finds the fresh rate for the originally selected shipping
// product. Rate IDs expire with their shipment; carrier+service is the
// stable identity.
func matchRate(rates []forwarding.Rate, selected forwarding.RateSelection) *forwarding.Rate {
	for i := range rates {
		if strings.EqualFold(rates[i].Carrier, selected.Carrier) &&
			strings.EqualFold(rates[i].Service, selected.Service) {
			return &rates[i]
		}
	}
	return nil
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// formatMinorUnits renders minor currency units as a decimal string
func formatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
