package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/mailriver/backend/internal/application/identity"
	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/infrastructure/auth"
	"github.com/mailriver/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login, and session lifecycle endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest creates a workspace together with its owner account
type RegisterRequest struct {
	WorkspaceName string `json:"workspace_name" binding:"required,min=1,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8,max=72"`
	Name          string `json:"name" binding:"required,min=1,max=100"`
}

// LoginRequest authenticates by email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest revokes the current session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest rotates a password with proof of the old one
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// PasswordResetRequest starts a password reset flow for an email
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest redeems a reset token for a new password
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// VerifyEmailRequest redeems an email verification token
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterResponse carries the new tenancy and its first session. The
// verification token is included until an outbound mail channel exists.
type RegisterResponse struct {
	Workspace         *identity.Workspace `json:"workspace"`
	User              *identity.User      `json:"user"`
	Tokens            *auth.TokenPair     `json:"tokens"`
	VerificationToken string              `json:"verification_token,omitempty"`
}

// Register creates a workspace and its owner account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	out, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		WorkspaceName: req.WorkspaceName,
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, RegisterResponse{
		Workspace:         out.Workspace,
		User:              out.User,
		Tokens:            out.Tokens,
		VerificationToken: out.VerificationToken,
	})
}

// Login authenticates a user and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	out, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, out)
}

// Refresh rotates a refresh token into a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tokens)
}

// Logout blacklists the current access token and the supplied refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangePassword rotates the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identityapp.ChangePasswordInput{
		UserID:      uid,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RequestPasswordReset issues a reset token for a known email. Unknown
// emails get the same empty success so the endpoint cannot be used to
// enumerate accounts.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	token, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Token is returned in the body until an outbound mail channel exists.
	h.Success(c, gin.H{"reset_token": token})
}

// ConfirmPasswordReset redeems a reset token for a new password
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	err := h.authService.ConfirmPasswordReset(c.Request.Context(), identityapp.ConfirmPasswordResetInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// VerifyEmail marks the account behind a verification token as verified
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
