package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/mailriver/backend/internal/application/identity"
	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
)

// UserHandler handles member management inside a workspace
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateMemberRequest adds an account to the authenticated workspace
type CreateMemberRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"required,oneof=MEMBER HANDLER ADMIN"`
}

// Create adds a member to the workspace. Owner accounts can only be made
// through registration.
func (h *UserHandler) Create(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	user, err := h.userService.CreateMember(c.Request.Context(), identityapp.CreateMemberInput{
		WorkspaceID: wsID,
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        identity.UserRole(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Get returns a single member of the workspace
func (h *UserHandler) Get(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	uid, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), wsID, uid)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// List returns the workspace's members, paginated
func (h *UserHandler) List(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.userService.ListUsers(c.Request.Context(), wsID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Suspend locks a member account out of the workspace
func (h *UserHandler) Suspend(c *gin.Context) {
	wsID, err := workspaceID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	uid, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	user, err := h.userService.SuspendUser(c.Request.Context(), wsID, uid)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}
