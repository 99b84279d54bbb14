package identity

import (
	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/infrastructure/auth"
)

// RegisterInput creates a workspace and its owner account in one step
type RegisterInput struct {
	WorkspaceName string
	Email         string
	Password      string
	Name          string
}

// RegisterOutput carries the new tenancy, its owner, a session, and the
// email verification token for the delivery layer to send out
type RegisterOutput struct {
	Workspace         *identity.Workspace
	User              *identity.User
	Tokens            *auth.TokenPair
	VerificationToken string
}

// LoginInput authenticates by email and password
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput carries the session and the authenticated user
type LoginOutput struct {
	Tokens *auth.TokenPair
	User   *identity.User
}

// CreateMemberInput adds an account to an existing workspace
type CreateMemberInput struct {
	WorkspaceID uuid.UUID
	Email       string
	Password    string
	Name        string
	Role        identity.UserRole
}

// ChangePasswordInput rotates a password with proof of the old one
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ConfirmPasswordResetInput redeems a reset token for a new password
type ConfirmPasswordResetInput struct {
	Token       string
	NewPassword string
}
