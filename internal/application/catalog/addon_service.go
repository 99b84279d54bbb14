package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
)

// AddonService manages purchasable extras priced outside the plans
type AddonService struct {
	addonRepo catalog.AddonRepository
	logger    *zap.Logger
}

// NewAddonService creates a new addon service
func NewAddonService(addonRepo catalog.AddonRepository, logger *zap.Logger) *AddonService {
	return &AddonService{addonRepo: addonRepo, logger: logger}
}

// CreateAddon adds an addon to the catalog
func (s *AddonService) CreateAddon(ctx context.Context, input AddonInput) (*catalog.Addon, error) {
	addon, err := catalog.NewAddon(input.Code, input.Name, input.Price, input.Recurring)
	if err != nil {
		return nil, err
	}

	exists, err := s.addonRepo.ExistsByCode(ctx, addon.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Addon with this code already exists")
	}

	if err := s.addonRepo.Save(ctx, addon); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Addon with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("Addon created",
		zap.String("addon_id", addon.ID.String()),
		zap.String("code", addon.Code),
		zap.Int64("price", addon.Price))

	return addon, nil
}

// DeleteAddon retires an addon
func (s *AddonService) DeleteAddon(ctx context.Context, addonID uuid.UUID) error {
	addon, err := s.findAddon(ctx, addonID)
	if err != nil {
		return err
	}
	if err := addon.SoftDelete(); err != nil {
		return err
	}
	addon.IncrementVersion()
	return s.addonRepo.Save(ctx, addon)
}

// GetAddon returns one addon by ID
func (s *AddonService) GetAddon(ctx context.Context, addonID uuid.UUID) (*catalog.Addon, error) {
	return s.findAddon(ctx, addonID)
}

// ListAddons returns a page of addons
func (s *AddonService) ListAddons(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalog.Addon], error) {
	addons, total, err := s.addonRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(addons, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *AddonService) findAddon(ctx context.Context, addonID uuid.UUID) (*catalog.Addon, error) {
	addon, err := s.addonRepo.FindByID(ctx, addonID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Addon not found")
		}
		return nil, err
	}
	if addon.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Addon not found")
	}
	return addon, nil
}
