package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
)

// WorkspaceService covers workspace self-service (rename) and the platform
// admin lifecycle (suspend, reactivate, delete)
type WorkspaceService struct {
	workspaceRepo identity.WorkspaceRepository
	logger        *zap.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(workspaceRepo identity.WorkspaceRepository, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo, logger: logger}
}

// GetWorkspace returns one workspace by ID
func (s *WorkspaceService) GetWorkspace(ctx context.Context, workspaceID uuid.UUID) (*identity.Workspace, error) {
	return s.findWorkspace(ctx, workspaceID)
}

// GetWorkspaceBySlug returns one workspace by slug
func (s *WorkspaceService) GetWorkspaceBySlug(ctx context.Context, slug string) (*identity.Workspace, error) {
	workspace, err := s.workspaceRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Workspace not found")
		}
		return nil, err
	}
	return workspace, nil
}

// RenameWorkspace changes the display name; the slug stays stable because
// office staff and integrations key on it
func (s *WorkspaceService) RenameWorkspace(ctx context.Context, workspaceID uuid.UUID, name string) (*identity.Workspace, error) {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := workspace.Rename(name); err != nil {
		return nil, err
	}
	workspace.IncrementVersion()
	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

// SuspendWorkspace blocks all of the workspace's users from logging in
func (s *WorkspaceService) SuspendWorkspace(ctx context.Context, workspaceID uuid.UUID) (*identity.Workspace, error) {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := workspace.Suspend(); err != nil {
		return nil, err
	}
	workspace.IncrementVersion()
	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return nil, err
	}

	s.logger.Info("Workspace suspended", zap.String("workspace_id", workspace.ID.String()))
	return workspace, nil
}

// ActivateWorkspace reinstates a suspended workspace
func (s *WorkspaceService) ActivateWorkspace(ctx context.Context, workspaceID uuid.UUID) (*identity.Workspace, error) {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := workspace.Activate(); err != nil {
		return nil, err
	}
	workspace.IncrementVersion()
	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return nil, err
	}

	s.logger.Info("Workspace activated", zap.String("workspace_id", workspace.ID.String()))
	return workspace, nil
}

// DeleteWorkspace soft-deletes the workspace. Mail history and the balance
// ledger are retained.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, workspaceID uuid.UUID) error {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if err := workspace.SoftDelete(); err != nil {
		return err
	}
	workspace.IncrementVersion()
	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return err
	}

	s.logger.Info("Workspace deleted", zap.String("workspace_id", workspace.ID.String()))
	return nil
}

func (s *WorkspaceService) findWorkspace(ctx context.Context, workspaceID uuid.UUID) (*identity.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Workspace not found")
		}
		return nil, err
	}
	return workspace, nil
}
