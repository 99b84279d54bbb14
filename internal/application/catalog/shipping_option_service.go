package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

// ShippingOptionService manages the speed and packaging tiers and their
// per-location assignments
type ShippingOptionService struct {
	optionRepo     catalog.ShippingOptionRepository
	assignmentRepo catalog.LocationShippingOptionRepository
	locationRepo   mail.OfficeLocationRepository
	logger         *zap.Logger
}

// NewShippingOptionService creates a new shipping option service
func NewShippingOptionService(
	optionRepo catalog.ShippingOptionRepository,
	assignmentRepo catalog.LocationShippingOptionRepository,
	locationRepo mail.OfficeLocationRepository,
	logger *zap.Logger,
) *ShippingOptionService {
	return &ShippingOptionService{
		optionRepo:     optionRepo,
		assignmentRepo: assignmentRepo,
		locationRepo:   locationRepo,
		logger:         logger,
	}
}

// CreateOption adds a speed or packaging tier to the catalog
func (s *ShippingOptionService) CreateOption(ctx context.Context, input ShippingOptionInput) (*catalog.ShippingOption, error) {
	option, err := catalog.NewShippingOption(input.Kind, input.Code, input.Name, input.BasePrice)
	if err != nil {
		return nil, err
	}
	option.Description = input.Description

	exists, err := s.optionRepo.ExistsByCode(ctx, option.Kind, option.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Shipping option with this code already exists")
	}

	if err := s.optionRepo.Save(ctx, option); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Shipping option with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("Shipping option created",
		zap.String("option_id", option.ID.String()),
		zap.String("kind", string(option.Kind)),
		zap.String("code", option.Code))

	return option, nil
}

// DeleteOption retires a shipping option. Location assignments remain
// but stop resolving.
func (s *ShippingOptionService) DeleteOption(ctx context.Context, optionID uuid.UUID) error {
	option, err := s.findOption(ctx, optionID)
	if err != nil {
		return err
	}
	if err := option.SoftDelete(); err != nil {
		return err
	}
	option.IncrementVersion()
	return s.optionRepo.Save(ctx, option)
}

// GetOption returns one shipping option by ID
func (s *ShippingOptionService) GetOption(ctx context.Context, optionID uuid.UUID) (*catalog.ShippingOption, error) {
	return s.findOption(ctx, optionID)
}

// ListOptions returns the live options of one kind
func (s *ShippingOptionService) ListOptions(ctx context.Context, kind catalog.ShippingOptionKind) ([]catalog.ShippingOption, error) {
	options, err := s.optionRepo.FindByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	live := options[:0]
	for _, option := range options {
		if option.DeletedAt == nil {
			live = append(live, option)
		}
	}
	return live, nil
}

// AssignToLocation offers a shipping option at an office location,
// optionally at a location-specific price. One assignment per
// location+option pair.
func (s *ShippingOptionService) AssignToLocation(ctx context.Context, input AssignLocationOptionInput) (*catalog.LocationShippingOption, error) {
	if _, err := s.findLocation(ctx, input.OfficeLocationID); err != nil {
		return nil, err
	}
	option, err := s.findOption(ctx, input.ShippingOptionID)
	if err != nil {
		return nil, err
	}

	assignment, err := catalog.NewLocationShippingOption(input.OfficeLocationID, option.ID, input.PriceOverride)
	if err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_ASSIGNED", "Shipping option is already offered at this location")
		}
		return nil, err
	}

	s.logger.Info("Shipping option assigned to location",
		zap.String("office_location_id", input.OfficeLocationID.String()),
		zap.String("option_code", option.Code))

	return assignment, nil
}

// UpdateLocationPrice changes the location override for an existing
// assignment. A nil price reverts to the catalog base price.
func (s *ShippingOptionService) UpdateLocationPrice(ctx context.Context, officeLocationID, optionID uuid.UUID, price *int64) (*catalog.LocationShippingOption, error) {
	assignment, err := s.findAssignment(ctx, officeLocationID, optionID)
	if err != nil {
		return nil, err
	}
	if price != nil && *price < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price override cannot be negative")
	}
	assignment.PriceOverride = price
	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// RemoveFromLocation withdraws a shipping option from a location
func (s *ShippingOptionService) RemoveFromLocation(ctx context.Context, officeLocationID, optionID uuid.UUID) error {
	assignment, err := s.findAssignment(ctx, officeLocationID, optionID)
	if err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, assignment.ID)
}

// ListLocationOptions returns the options of one kind offered at a
// location with their effective prices
func (s *ShippingOptionService) ListLocationOptions(ctx context.Context, officeLocationID uuid.UUID, kind catalog.ShippingOptionKind) ([]LocationOptionView, error) {
	if _, err := s.findLocation(ctx, officeLocationID); err != nil {
		return nil, err
	}
	assignments, options, err := s.assignmentRepo.FindByLocationAndKind(ctx, officeLocationID, kind)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]catalog.ShippingOption, len(options))
	for _, option := range options {
		byID[option.ID] = option
	}

	views := make([]LocationOptionView, 0, len(assignments))
	for _, assignment := range assignments {
		option, ok := byID[assignment.ShippingOptionID]
		if !ok || option.DeletedAt != nil {
			continue
		}
		views = append(views, LocationOptionView{
			Assignment: assignment,
			Option:     option,
			Price:      assignment.EffectivePrice(&option),
		})
	}
	return views, nil
}

func (s *ShippingOptionService) findOption(ctx context.Context, optionID uuid.UUID) (*catalog.ShippingOption, error) {
	option, err := s.optionRepo.FindByID(ctx, optionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Shipping option not found")
		}
		return nil, err
	}
	if option.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Shipping option not found")
	}
	return option, nil
}

func (s *ShippingOptionService) findLocation(ctx context.Context, locationID uuid.UUID) (*mail.OfficeLocation, error) {
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Office location not found")
		}
		return nil, err
	}
	return location, nil
}

func (s *ShippingOptionService) findAssignment(ctx context.Context, officeLocationID, optionID uuid.UUID) (*catalog.LocationShippingOption, error) {
	assignment, err := s.assignmentRepo.FindByLocationAndOption(ctx, officeLocationID, optionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Shipping option is not offered at this location")
		}
		return nil, err
	}
	return assignment, nil
}
