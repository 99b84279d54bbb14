package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
)

// FeatureService manages the meterable feature catalog
type FeatureService struct {
	featureRepo catalog.FeatureRepository
	logger      *zap.Logger
}

// NewFeatureService creates a new feature service
func NewFeatureService(featureRepo catalog.FeatureRepository, logger *zap.Logger) *FeatureService {
	return &FeatureService{featureRepo: featureRepo, logger: logger}
}

// CreateFeature adds a feature to the catalog
func (s *FeatureService) CreateFeature(ctx context.Context, input FeatureInput) (*catalog.Feature, error) {
	feature, err := catalog.NewFeature(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	feature.Description = input.Description

	if existing, err := s.featureRepo.FindByCode(ctx, feature.Code); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	} else if existing.DeletedAt == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Feature with this code already exists")
	}

	if err := s.featureRepo.Save(ctx, feature); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Feature with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("Feature created",
		zap.String("feature_id", feature.ID.String()),
		zap.String("code", feature.Code))

	return feature, nil
}

// DeleteFeature retires a feature. Plans keep their grants; usage just
// stops being metered against it.
func (s *FeatureService) DeleteFeature(ctx context.Context, featureID uuid.UUID) error {
	feature, err := s.findFeature(ctx, featureID)
	if err != nil {
		return err
	}
	if err := feature.SoftDelete(); err != nil {
		return err
	}
	feature.IncrementVersion()
	return s.featureRepo.Save(ctx, feature)
}

// GetFeature returns one feature by ID
func (s *FeatureService) GetFeature(ctx context.Context, featureID uuid.UUID) (*catalog.Feature, error) {
	return s.findFeature(ctx, featureID)
}

// ListFeatures returns a page of features
func (s *FeatureService) ListFeatures(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalog.Feature], error) {
	features, total, err := s.featureRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(features, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *FeatureService) findFeature(ctx context.Context, featureID uuid.UUID) (*catalog.Feature, error) {
	feature, err := s.featureRepo.FindByID(ctx, featureID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Feature not found")
		}
		return nil, err
	}
	if feature.DeletedAt != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Feature not found")
	}
	return feature, nil
}
