package mail

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/domain/shared/valueobject"
)

// DeliveryAddressService manages a workspace's forwarding destinations.
// Shipped labels quote the address as it existed at purchase time, so an
// address that any forwarding request references is frozen: it can be
// soft-deleted but never edited.
type DeliveryAddressService struct {
	addressRepo mail.DeliveryAddressRepository
	requestRepo forwarding.Repository
	logger      *zap.Logger
}

// NewDeliveryAddressService creates a new delivery address service
func NewDeliveryAddressService(
	addressRepo mail.DeliveryAddressRepository,
	requestRepo forwarding.Repository,
	logger *zap.Logger,
) *DeliveryAddressService {
	return &DeliveryAddressService{
		addressRepo: addressRepo,
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// CreateAddress adds a delivery address to the workspace
func (s *DeliveryAddressService) CreateAddress(ctx context.Context, workspaceID uuid.UUID, input AddressInput) (*mail.DeliveryAddress, error) {
	postal, err := buildPostalAddress(input)
	if err != nil {
		return nil, err
	}

	address, err := mail.NewDeliveryAddress(workspaceID, input.Label, postal)
	if err != nil {
		return nil, err
	}
	if input.MakeDefault {
		if err := s.clearCurrentDefault(ctx, workspaceID, uuid.Nil); err != nil {
			return nil, err
		}
		address.MakeDefault()
	}

	if err := s.addressRepo.Save(ctx, address); err != nil {
		return nil, err
	}

	s.logger.Info("Delivery address created",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("address_id", address.ID.String()))

	return address, nil
}

// UpdateAddress replaces the address fields. Fails with ADDRESS_IN_USE once
// any forwarding request references the address.
func (s *DeliveryAddressService) UpdateAddress(ctx context.Context, workspaceID, addressID uuid.UUID, input AddressInput) (*mail.DeliveryAddress, error) {
	address, err := s.findAddress(ctx, workspaceID, addressID)
	if err != nil {
		return nil, err
	}

	referenced, err := s.requestRepo.ExistsByDeliveryAddress(ctx, address.ID)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, shared.NewDomainError("ADDRESS_IN_USE",
			"Address is referenced by a forwarding request and cannot be changed; create a new address instead")
	}

	postal, err := buildPostalAddress(input)
	if err != nil {
		return nil, err
	}
	if err := address.Update(input.Label, postal); err != nil {
		return nil, err
	}
	if input.MakeDefault && !address.IsDefault {
		if err := s.clearCurrentDefault(ctx, workspaceID, address.ID); err != nil {
			return nil, err
		}
		address.MakeDefault()
	}

	address.IncrementVersion()
	if err := s.addressRepo.Save(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// SetDefault marks the address as the workspace default, clearing any
// previous default
func (s *DeliveryAddressService) SetDefault(ctx context.Context, workspaceID, addressID uuid.UUID) (*mail.DeliveryAddress, error) {
	address, err := s.findAddress(ctx, workspaceID, addressID)
	if err != nil {
		return nil, err
	}
	if address.IsDefault {
		return address, nil
	}

	if err := s.clearCurrentDefault(ctx, workspaceID, address.ID); err != nil {
		return nil, err
	}
	address.MakeDefault()
	address.IncrementVersion()
	if err := s.addressRepo.Save(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress soft-deletes the address. Past forwarding requests keep
// their reference; the address just stops being offered.
func (s *DeliveryAddressService) DeleteAddress(ctx context.Context, workspaceID, addressID uuid.UUID) error {
	address, err := s.findAddress(ctx, workspaceID, addressID)
	if err != nil {
		return err
	}
	if err := address.SoftDelete(); err != nil {
		return err
	}
	address.IncrementVersion()
	if err := s.addressRepo.Save(ctx, address); err != nil {
		return err
	}

	s.logger.Info("Delivery address deleted",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("address_id", address.ID.String()))

	return nil
}

// GetAddress returns one address scoped to the workspace
func (s *DeliveryAddressService) GetAddress(ctx context.Context, workspaceID, addressID uuid.UUID) (*mail.DeliveryAddress, error) {
	return s.findAddress(ctx, workspaceID, addressID)
}

// ListAddresses returns the workspace's live addresses, default first
func (s *DeliveryAddressService) ListAddresses(ctx context.Context, workspaceID uuid.UUID) ([]mail.DeliveryAddress, error) {
	return s.addressRepo.FindByWorkspace(ctx, workspaceID)
}

func (s *DeliveryAddressService) findAddress(ctx context.Context, workspaceID, addressID uuid.UUID) (*mail.DeliveryAddress, error) {
	address, err := s.addressRepo.FindByIDForWorkspace(ctx, workspaceID, addressID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Delivery address not found")
		}
		return nil, err
	}
	if address.IsDeleted() {
		return nil, shared.NewDomainError("NOT_FOUND", "Delivery address not found")
	}
	return address, nil
}

// clearCurrentDefault demotes the current default address, skipping the one
// about to become default
func (s *DeliveryAddressService) clearCurrentDefault(ctx context.Context, workspaceID, keepID uuid.UUID) error {
	addresses, err := s.addressRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	for i := range addresses {
		current := &addresses[i]
		if !current.IsDefault || current.ID == keepID {
			continue
		}
		current.ClearDefault()
		current.IncrementVersion()
		if err := s.addressRepo.Save(ctx, current); err != nil {
			return err
		}
	}
	return nil
}

// buildPostalAddress converts input fields into the address value object
func buildPostalAddress(input AddressInput) (valueobject.Address, error) {
	var opts []valueobject.AddressOption
	if input.Company != "" {
		opts = append(opts, valueobject.WithCompany(input.Company))
	}
	if input.Street2 != "" {
		opts = append(opts, valueobject.WithStreet2(input.Street2))
	}
	if input.Phone != "" {
		opts = append(opts, valueobject.WithPhone(input.Phone))
	}

	postal, err := valueobject.NewAddress(input.Name, input.Street1, input.City,
		input.State, input.Zip, input.Country, opts...)
	if err != nil {
		return valueobject.Address{}, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	return postal, nil
}
