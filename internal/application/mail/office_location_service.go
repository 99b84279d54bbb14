package mail

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

// OfficeLocationService is the admin surface for physical office locations
type OfficeLocationService struct {
	locationRepo mail.OfficeLocationRepository
	logger       *zap.Logger
}

// NewOfficeLocationService creates a new office location service
func NewOfficeLocationService(locationRepo mail.OfficeLocationRepository, logger *zap.Logger) *OfficeLocationService {
	return &OfficeLocationService{locationRepo: locationRepo, logger: logger}
}

// CreateLocation adds a new office location. Codes are globally unique.
func (s *OfficeLocationService) CreateLocation(ctx context.Context, input LocationInput) (*mail.OfficeLocation, error) {
	postal, err := buildPostalAddress(AddressInput{
		Name:    input.Name,
		Street1: input.Street1,
		Street2: input.Street2,
		City:    input.City,
		State:   input.State,
		Zip:     input.Zip,
		Country: input.Country,
		Phone:   input.Phone,
	})
	if err != nil {
		return nil, err
	}

	location, err := mail.NewOfficeLocation(input.Code, input.Name, postal)
	if err != nil {
		return nil, err
	}

	exists, err := s.locationRepo.ExistsByCode(ctx, location.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Office location code is already in use")
	}

	if err := s.locationRepo.Save(ctx, location); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Office location code is already in use")
		}
		return nil, err
	}

	s.logger.Info("Office location created",
		zap.String("location_id", location.ID.String()),
		zap.String("code", location.Code))

	return location, nil
}

// UpdateLocation replaces the location's name and address. The code is
// immutable; mailboxes and printed mailing addresses are keyed to it.
func (s *OfficeLocationService) UpdateLocation(ctx context.Context, locationID uuid.UUID, input LocationInput) (*mail.OfficeLocation, error) {
	location, err := s.findLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	postal, err := buildPostalAddress(AddressInput{
		Name:    input.Name,
		Street1: input.Street1,
		Street2: input.Street2,
		City:    input.City,
		State:   input.State,
		Zip:     input.Zip,
		Country: input.Country,
		Phone:   input.Phone,
	})
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		location.Name = input.Name
	}
	location.Address = postal
	location.IncrementVersion()
	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// SetActive toggles whether the location accepts new mailboxes
func (s *OfficeLocationService) SetActive(ctx context.Context, locationID uuid.UUID, active bool) (*mail.OfficeLocation, error) {
	location, err := s.findLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if active {
		location.Activate()
	} else {
		location.Deactivate()
	}
	location.IncrementVersion()
	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// DeleteLocation soft-deletes the location
func (s *OfficeLocationService) DeleteLocation(ctx context.Context, locationID uuid.UUID) error {
	location, err := s.findLocation(ctx, locationID)
	if err != nil {
		return err
	}
	if err := location.SoftDelete(); err != nil {
		return err
	}
	location.IncrementVersion()
	if err := s.locationRepo.Save(ctx, location); err != nil {
		return err
	}

	s.logger.Info("Office location deleted",
		zap.String("location_id", location.ID.String()),
		zap.String("code", location.Code))

	return nil
}

// GetLocation returns one office location
func (s *OfficeLocationService) GetLocation(ctx context.Context, locationID uuid.UUID) (*mail.OfficeLocation, error) {
	return s.findLocation(ctx, locationID)
}

// ListLocations returns a page of office locations
func (s *OfficeLocationService) ListLocations(ctx context.Context, filter shared.Filter) (*shared.Paginated[mail.OfficeLocation], error) {
	locations, total, err := s.locationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(locations, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *OfficeLocationService) findLocation(ctx context.Context, locationID uuid.UUID) (*mail.OfficeLocation, error) {
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Office location not found")
		}
		return nil, err
	}
	if location.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Office location not found")
	}
	return location, nil
}
