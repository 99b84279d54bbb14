package forwarding

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/forwarding"
	"github.com/mailriver/backend/internal/domain/shared"
)

// LifecycleService drives handler-facing state transitions on forwarding
// requests after the label is purchased.
type LifecycleService struct {
	requestRepo forwarding.Repository
	gateway     forwarding.RateGateway
	logger      *zap.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	requestRepo forwarding.Repository,
	gateway forwarding.RateGateway,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		requestRepo: requestRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// Complete marks a request physically handed to the carrier
func (s *LifecycleService) Complete(ctx context.Context, requestID uuid.UUID) (*forwarding.ForwardingRequest, error) {
	req, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Complete(); err != nil {
		return nil, err
	}
	req.IncrementVersion()
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Forwarding request completed",
		zap.String("request_id", req.ID.String()),
		zap.String("tracking_code", req.TrackingCode))
	return req, nil
}

// Cancel voids a request that has not yet been completed
func (s *LifecycleService) Cancel(ctx context.Context, workspaceID, requestID uuid.UUID) (*forwarding.ForwardingRequest, error) {
	req, err := s.requestRepo.FindByIDForWorkspace(ctx, workspaceID, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Forwarding request not found")
		}
		return nil, err
	}

	if err := req.Cancel(); err != nil {
		return nil, err
	}
	req.IncrementVersion()
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Forwarding request cancelled",
		zap.String("request_id", req.ID.String()))
	return req, nil
}

// Track merges the stored request with the gateway's live transit status
func (s *LifecycleService) Track(ctx context.Context, workspaceID, requestID uuid.UUID) (*TrackOutput, error) {
	req, err := s.requestRepo.FindByIDForWorkspace(ctx, workspaceID, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Forwarding request not found")
		}
		return nil, err
	}

	if !req.HasTracking() {
		return nil, shared.NewDomainError("NO_TRACKING", "No tracking code available for this request")
	}

	tracking, err := s.gateway.Track(ctx, req.TrackingCode, req.Carrier)
	if err != nil {
		return nil, err
	}

	return &TrackOutput{Request: req, Tracking: tracking}, nil
}

// ListForHandler lists requests at one office location for operations
// staff, optionally narrowed by status, newest first.
func (s *LifecycleService) ListForHandler(ctx context.Context, officeLocationID uuid.UUID, status *forwarding.RequestStatus, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	return s.requestRepo.FindByOfficeLocation(ctx, officeLocationID, status, filter)
}

// ListForWorkspace lists a customer's own requests
func (s *LifecycleService) ListForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[*forwarding.ForwardingRequest], error) {
	return s.requestRepo.FindByWorkspace(ctx, workspaceID, filter)
}

// Get returns one request scoped to its owning workspace
func (s *LifecycleService) Get(ctx context.Context, workspaceID, requestID uuid.UUID) (*forwarding.ForwardingRequest, error) {
	req, err := s.requestRepo.FindByIDForWorkspace(ctx, workspaceID, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Forwarding request not found")
		}
		return nil, err
	}
	return req, nil
}

func (s *LifecycleService) findRequest(ctx context.Context, requestID uuid.UUID) (*forwarding.ForwardingRequest, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Forwarding request not found")
		}
		return nil, err
	}
	return req, nil
}
