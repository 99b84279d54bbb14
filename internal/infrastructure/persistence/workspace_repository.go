package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormWorkspaceRepository implements identity.WorkspaceRepository using GORM
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewGormWorkspaceRepository creates a new GormWorkspaceRepository
func NewGormWorkspaceRepository(db *gorm.DB) *GormWorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Workspace, error) {
	var model models.WorkspaceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a workspace by slug. Slugs are stored lowercase.
func (r *GormWorkspaceRepository) FindBySlug(ctx context.Context, slug string) (*identity.Workspace, error) {
	var model models.WorkspaceModel
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsBySlug checks if a workspace with the given slug exists
func (r *GormWorkspaceRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WorkspaceModel{}).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a workspace
func (r *GormWorkspaceRepository) Save(ctx context.Context, workspace *identity.Workspace) error {
	model := models.WorkspaceModelFromDomain(workspace)
	return r.db.WithContext(ctx).Save(model).Error
}
