package forwarding

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/config"
)

// QuoteService prices a forward without committing to a purchase. The
// gateway shipment it creates is quote-only; no label is bought.
type QuoteService struct {
	mailItemRepo       mail.MailItemRepository
	locationRepo       mail.OfficeLocationRepository
	addressRepo        mail.DeliveryAddressRepository
	locationOptionRepo catalog.LocationShippingOptionRepository
	gateway            forwarding.RateGateway
	config             config.ForwardingConfig
	logger             *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	mailItemRepo mail.MailItemRepository,
	locationRepo mail.OfficeLocationRepository,
	addressRepo mail.DeliveryAddressRepository,
	locationOptionRepo catalog.LocationShippingOptionRepository,
	gateway forwarding.RateGateway,
	cfg config.ForwardingConfig,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		mailItemRepo:       mailItemRepo,
		locationRepo:       locationRepo,
		addressRepo:        addressRepo,
		locationOptionRepo: locationOptionRepo,
		gateway:            gateway,
		config:             cfg,
		logger:             logger,
	}
}

// GetForwardingQuote prices every available carrier service for one mail
// item shipped to one delivery address. The item must be measured first;
// the gateway is never called for an unmeasured item.
func (s *QuoteService) GetForwardingQuote(ctx context.Context, input QuoteInput) (*QuoteOutput, error) {
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

	// Location speed and packaging tiers are independent lookups
	var speedOptions, packagingOptions []OptionQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		speedOptions, err = s.priceOptions(gctx, location.ID, catalog.ShippingOptionKindSpeed)
		return err
	})
	g.Go(func() error {
		var err error
		packagingOptions, err = s.priceOptions(gctx, location.ID, catalog.ShippingOptionKindPackaging)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	from := shipmentAddress(location.Address)
	to := shipmentAddress(address.Address)
	parcel := parcelFromDimensions(item.Dimensions)

	quote, err := s.gateway.CreateShipment(ctx, from, to, parcel)
	if err != nil {
		s.logger.Error("Quote shipment creation failed",
			zap.String("mail_item_id", input.MailItemID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Forwarding quote assembled",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("mail_item_id", input.MailItemID.String()),
		zap.String("shipment_id", quote.ShipmentID),
		zap.Int("rates", len(quote.Rates)))

	return &QuoteOutput{
		ShipmentID:       quote.ShipmentID,
		Rates:            quote.Rates,
		Summary:          summarizeRates(quote.Rates, s.config.AssumedTransitDays),
		SpeedOptions:     speedOptions,
		PackagingOptions: packagingOptions,
		From:             from,
		To:               to,
		Parcel:           parcel,
	}, nil
}

// priceOptions resolves one kind of shipping option for a location,
// applying per-location price overrides over the catalog base price
func (s *QuoteService) priceOptions(ctx context.Context, locationID uuid.UUID, kind catalog.ShippingOptionKind) ([]OptionQuote, error) {
	assignments, options, err := s.locationOptionRepo.FindByLocationAndKind(ctx, locationID, kind)
	if err != nil {
		return nil, err
	}

	quotes := make([]OptionQuote, 0, len(options))
	for i := range options {
		quotes = append(quotes, OptionQuote{
			ID:   options[i].ID,
			Code: options[i].Code,
			Name: options[i].Name,
			Fee:  assignments[i].EffectivePrice(&options[i]),
		})
	}
	return quotes, nil
}

// summarizeRates computes the display summary. Ties for cheapest and
// fastest keep the first-encountered rate; rates without a delivery
// estimate are ranked with the assumed worst-case transit days.
func summarizeRates(rates []forwarding.Rate, assumedTransitDays int) QuoteSummary {
	summary := QuoteSummary{TotalRatesFound: len(rates)}
	if len(rates) == 0 {
		return summary
	}

	carriers := make(map[string]struct{})
	var sum int64
	summary.MinFee = rates[0].Amount
	summary.MaxFee = rates[0].Amount

	for i := range rates {
		r := &rates[i]
		carriers[r.Carrier] = struct{}{}
		sum += r.Amount

		if r.Amount < summary.MinFee {
			summary.MinFee = r.Amount
		}
		if r.Amount > summary.MaxFee {
			summary.MaxFee = r.Amount
		}
		if summary.Cheapest == nil || r.Amount < summary.Cheapest.Amount {
			summary.Cheapest = r
		}
		if summary.Fastest == nil || transitDays(r, assumedTransitDays) < transitDays(summary.Fastest, assumedTransitDays) {
			summary.Fastest = r
		}
	}

	summary.Carriers = make([]string, 0, len(carriers))
	for carrier := range carriers {
		summary.Carriers = append(summary.Carriers, carrier)
	}
	sort.Strings(summary.Carriers)
	summary.DistinctCarriers = len(summary.Carriers)
	n := int64(len(rates))
	summary.MeanFee = (sum + n/2) / n // round to nearest minor unit
	return summary
}

func transitDays(r *forwarding.Rate, assumed int) int {
	if r.DeliveryDays != nil {
		return *r.DeliveryDays
	}
	return assumed
}
