package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
)

// CarrierService manages the shipping carrier registry. Carriers here
// are display and tracking metadata; live rates come from the shipping
// gateway.
type CarrierService struct {
	carrierRepo catalog.CarrierRepository
	logger      *zap.Logger
}

// NewCarrierService creates a new carrier service
func NewCarrierService(carrierRepo catalog.CarrierRepository, logger *zap.Logger) *CarrierService {
	return &CarrierService{carrierRepo: carrierRepo, logger: logger}
}

// CreateCarrier registers a carrier
func (s *CarrierService) CreateCarrier(ctx context.Context, input CarrierInput) (*catalog.Carrier, error) {
	carrier, err := catalog.NewCarrier(input.Code, input.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.carrierRepo.ExistsByCode(ctx, carrier.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Carrier with this code already exists")
	}

	if err := s.carrierRepo.Save(ctx, carrier); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Carrier with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("Carrier registered",
		zap.String("carrier_id", carrier.ID.String()),
		zap.String("code", carrier.Code))

	return carrier, nil
}

// DeleteCarrier retires a carrier
func (s *CarrierService) DeleteCarrier(ctx context.Context, carrierID uuid.UUID) error {
	carrier, err := s.findCarrier(ctx, carrierID)
	if err != nil {
		return err
	}
	if err := carrier.SoftDelete(); err != nil {
		return err
	}
	carrier.IncrementVersion()
	return s.carrierRepo.Save(ctx, carrier)
}

// GetCarrier returns one carrier by ID
func (s *CarrierService) GetCarrier(ctx context.Context, carrierID uuid.UUID) (*catalog.Carrier, error) {
	return s.findCarrier(ctx, carrierID)
}

// GetCarrierByCode returns one carrier by its code
func (s *CarrierService) GetCarrierByCode(ctx context.Context, code string) (*catalog.Carrier, error) {
	carrier, err := s.carrierRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Carrier not found")
		}
		return nil, err
	}
	return carrier, nil
}

// ListCarriers returns a page of carriers
func (s *CarrierService) ListCarriers(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalog.Carrier], error) {
	carriers, total, err := s.carrierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(carriers, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *CarrierService) findCarrier(ctx context.Context, carrierID uuid.UUID) (*catalog.Carrier, error) {
	carrier, err := s.carrierRepo.FindByID(ctx, carrierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Carrier not found")
		}
		return nil, err
	}
	if carrier.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Carrier not found")
	}
	return carrier, nil
}
