// Package workspacescope provides workspace-level database scoping for GORM.
//
// This package implements automatic workspace_id filtering to prevent
// cross-workspace data access at the repository layer. It extracts the
// workspace ID from the request context and automatically applies
// WHERE workspace_id = ? conditions to queries.
//
// Usage:
//
//	db := workspacescope.NewWorkspaceDB(gormDB)
//	scopedDB := db.WithContext(ctx) // automatically applies workspace filtering
//	scopedDB.Find(&items) // WHERE workspace_id = 'xxx' is auto-added
package workspacescope

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/infrastructure/logger"
)

// ErrWorkspaceIDRequired is returned when workspace_id is required but not found
var ErrWorkspaceIDRequired = errors.New("workspace_id is required but not found in context")

// ErrInvalidWorkspaceID is returned when workspace_id format is invalid
var ErrInvalidWorkspaceID = errors.New("invalid workspace_id format")

// WorkspaceScope applies workspace filtering to GORM queries
func WorkspaceScope(workspaceID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workspace_id = ?", workspaceID)
	}
}

// WorkspaceScopeString applies workspace filtering using a string workspace ID
func WorkspaceScopeString(workspaceID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workspace_id = ?", workspaceID)
	}
}

// WorkspaceDB wraps GORM DB with automatic workspace scoping
type WorkspaceDB struct {
	db              *gorm.DB
	workspaceColumn string
	required        bool
}

// Config holds configuration for WorkspaceDB
type Config struct {
	// WorkspaceColumn is the name of the workspace ID column (default: "workspace_id")
	WorkspaceColumn string
	// Required determines if workspace_id is mandatory (default: true)
	Required bool
}

// DefaultConfig returns default WorkspaceDB configuration
func DefaultConfig() Config {
	return Config{
		WorkspaceColumn: "workspace_id",
		Required:        true,
	}
}

// NewWorkspaceDB creates a new WorkspaceDB with default configuration
func NewWorkspaceDB(db *gorm.DB) *WorkspaceDB {
	return NewWorkspaceDBWithConfig(db, DefaultConfig())
}

// NewWorkspaceDBWithConfig creates a new WorkspaceDB with custom configuration
func NewWorkspaceDBWithConfig(db *gorm.DB, cfg Config) *WorkspaceDB {
	if cfg.WorkspaceColumn == "" {
		cfg.WorkspaceColumn = "workspace_id"
	}
	return &WorkspaceDB{
		db:              db,
		workspaceColumn: cfg.WorkspaceColumn,
		required:        cfg.Required,
	}
}

// DB returns the underlying GORM DB without workspace scoping.
// Use with caution - this bypasses workspace isolation.
func (w *WorkspaceDB) DB() *gorm.DB {
	return w.db
}

// WithContext returns a GORM DB scoped to the workspace from context.
// It extracts workspace_id from the context (set by auth middleware)
// and automatically applies the workspace filter to all queries.
//
// If workspace_id is not found in context and Required is true, it returns
// a DB that will error on any operation.
func (w *WorkspaceDB) WithContext(ctx context.Context) *gorm.DB {
	workspaceID := logger.GetWorkspaceID(ctx)

	if workspaceID == "" {
		if w.required {
			db := w.db.WithContext(ctx)
			_ = db.AddError(ErrWorkspaceIDRequired)
			return db
		}
		return w.db.WithContext(ctx)
	}

	if _, err := uuid.Parse(workspaceID); err != nil {
		db := w.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidWorkspaceID)
		return db
	}

	return w.db.WithContext(ctx).Scopes(WorkspaceScopeString(workspaceID))
}

// WithWorkspace returns a GORM DB scoped to a specific workspace ID.
// Use this when you have the workspace ID directly rather than from context.
func (w *WorkspaceDB) WithWorkspace(workspaceID uuid.UUID) *gorm.DB {
	if workspaceID == uuid.Nil {
		if w.required {
			db := w.db
			_ = db.AddError(ErrWorkspaceIDRequired)
			return db
		}
		return w.db
	}
	return w.db.Scopes(WorkspaceScope(workspaceID))
}

// WithWorkspaceString returns a GORM DB scoped to a specific workspace ID string.
func (w *WorkspaceDB) WithWorkspaceString(workspaceID string) *gorm.DB {
	if workspaceID == "" {
		if w.required {
			db := w.db
			_ = db.AddError(ErrWorkspaceIDRequired)
			return db
		}
		return w.db
	}

	if _, err := uuid.Parse(workspaceID); err != nil {
		db := w.db
		_ = db.AddError(ErrInvalidWorkspaceID)
		return db
	}

	return w.db.Scopes(WorkspaceScopeString(workspaceID))
}

// ForWorkspace creates a scoped DB carrying both the context and an explicit
// workspace ID. Useful when passing a scoped handle around.
func (w *WorkspaceDB) ForWorkspace(ctx context.Context, workspaceID uuid.UUID) *gorm.DB {
	return w.db.WithContext(ctx).Scopes(WorkspaceScope(workspaceID))
}

// Transaction executes a function within a database transaction with workspace scope
func (w *WorkspaceDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	workspaceID := logger.GetWorkspaceID(ctx)

	if workspaceID == "" && w.required {
		return ErrWorkspaceIDRequired
	}

	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if workspaceID != "" {
			tx = tx.Scopes(WorkspaceScopeString(workspaceID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any workspace scoping.
// WARNING: bypasses workspace isolation. Only for system-level operations
// such as migrations or the outbox processor.
func (w *WorkspaceDB) Unscoped() *gorm.DB {
	return w.db
}

// SetRequired changes whether workspace_id is required
func (w *WorkspaceDB) SetRequired(required bool) *WorkspaceDB {
	return &WorkspaceDB{
		db:              w.db,
		workspaceColumn: w.workspaceColumn,
		required:        required,
	}
}
