package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/mailriver/backend/internal/application/identity"
)

// WorkspaceHandler handles workspace-level endpoints for the authenticated
// tenancy
type WorkspaceHandler struct {
	BaseHandler
	workspaceService *identityapp.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(workspaceService *identityapp.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// RenameWorkspaceRequest changes the workspace display name
type RenameWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Get returns the authenticated workspace
func (h *WorkspaceHandler) Get(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	workspace, err := h.workspaceService.GetWorkspace(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workspace)
}

// Rename changes the workspace display name. The slug stays stable.
func (h *WorkspaceHandler) Rename(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RenameWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	workspace, err := h.workspaceService.RenameWorkspace(c.Request.Context(), wsID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workspace)
}

// Delete soft-deletes the authenticated workspace
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.workspaceService.DeleteWorkspace(c.Request.Context(), wsID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AdminSuspend suspends a workspace by ID. Admin only.
func (h *WorkspaceHandler) AdminSuspend(c *gin.Context) {
	wsID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid workspace ID format")
		return
	}

	workspace, err := h.workspaceService.SuspendWorkspace(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workspace)
}

// AdminActivate lifts a suspension on a workspace. Admin only.
func (h *WorkspaceHandler) AdminActivate(c *gin.Context) {
	wsID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid workspace ID format")
		return
	}

	workspace, err := h.workspaceService.ActivateWorkspace(c.Request.Context(), wsID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workspace)
}
