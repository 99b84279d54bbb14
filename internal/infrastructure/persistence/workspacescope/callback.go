package workspacescope

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mailriver/backend/internal/infrastructure/logger"
)

// WorkspaceCallback provides GORM callback hooks for automatic workspace filtering
type WorkspaceCallback struct {
	workspaceColumn string
	required        bool
}

// NewWorkspaceCallback creates a new workspace callback handler
func NewWorkspaceCallback(workspaceColumn string, required bool) *WorkspaceCallback {
	if workspaceColumn == "" {
		workspaceColumn = "workspace_id"
	}
	return &WorkspaceCallback{
		workspaceColumn: workspaceColumn,
		required:        required,
	}
}

// RegisterCallbacks registers workspace callbacks with GORM
func (wc *WorkspaceCallback) RegisterCallbacks(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("workspace:before_query", wc.beforeQuery)
	_ = db.Callback().Update().Before("gorm:update").Register("workspace:before_update", wc.beforeUpdate)
	_ = db.Callback().Delete().Before("gorm:delete").Register("workspace:before_delete", wc.beforeDelete)
	_ = db.Callback().Row().Before("gorm:row").Register("workspace:before_row", wc.beforeQuery)

	// Create is not hooked: workspace_id is set explicitly by the
	// application when creating entities
}

func (wc *WorkspaceCallback) beforeQuery(db *gorm.DB) {
	wc.addWorkspaceFilter(db)
}

func (wc *WorkspaceCallback) beforeUpdate(db *gorm.DB) {
	wc.addWorkspaceFilter(db)
}

func (wc *WorkspaceCallback) beforeDelete(db *gorm.DB) {
	wc.addWorkspaceFilter(db)
}

// addWorkspaceFilter adds workspace filtering to the query
func (wc *WorkspaceCallback) addWorkspaceFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}

	if db.Statement.Unscoped {
		return
	}

	if wc.hasWorkspaceCondition(db) {
		return
	}

	workspaceID := logger.GetWorkspaceID(db.Statement.Context)
	if workspaceID == "" {
		if wc.required {
			_ = db.AddError(ErrWorkspaceIDRequired)
		}
		return
	}

	if _, err := uuid.Parse(workspaceID); err != nil {
		_ = db.AddError(ErrInvalidWorkspaceID)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: wc.workspaceColumn},
				Value:  workspaceID,
			},
		},
	})
}

// hasWorkspaceCondition checks if a workspace_id condition is already present
func (wc *WorkspaceCallback) hasWorkspaceCondition(db *gorm.DB) bool {
	if db.Statement.Unscoped {
		return true
	}

	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if wc.exprContainsWorkspace(expr) {
					return true
				}
			}
		}
	}

	sql := db.Statement.SQL.String()
	if sql != "" && strings.Contains(sql, wc.workspaceColumn) {
		return true
	}

	return false
}

// exprContainsWorkspace checks if an expression contains the workspace_id column
func (wc *WorkspaceCallback) exprContainsWorkspace(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == wc.workspaceColumn
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == wc.workspaceColumn
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if wc.exprContainsWorkspace(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if wc.exprContainsWorkspace(cond) {
				return true
			}
		}
	}
	return false
}

// EnableAutoWorkspaceFilter enables automatic workspace filtering on a GORM DB
// instance by registering callbacks that add workspace_id filtering to queries
func EnableAutoWorkspaceFilter(db *gorm.DB, required bool) {
	wc := NewWorkspaceCallback("workspace_id", required)
	wc.RegisterCallbacks(db)
}

// DisableAutoWorkspaceFilter removes the workspace callbacks.
// GORM has no clean callback removal; this exists for tests.
func DisableAutoWorkspaceFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove("workspace:before_query")
	_ = db.Callback().Update().Remove("workspace:before_update")
	_ = db.Callback().Delete().Remove("workspace:before_delete")
	_ = db.Callback().Row().Remove("workspace:before_row")
}
