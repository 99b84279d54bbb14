package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/auth"
)

// slugAttempts bounds the numbered-suffix search before falling back to a
// random suffix
const slugAttempts = 5

// AuthService handles registration, sessions, and the token-based
// password-reset and email-verification flows. Sessions are stateless JWTs;
// revocation goes through the blacklist.
type AuthService struct {
	userRepo      identity.UserRepository
	workspaceRepo identity.WorkspaceRepository
	tokenRepo     identity.AuthTokenRepository
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	workspaceRepo identity.WorkspaceRepository,
	tokenRepo identity.AuthTokenRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		tokenRepo:     tokenRepo,
		jwtService:    jwtService,
		blacklist:     blacklist,
		logger:        logger,
	}
}

// Register creates a workspace with its owner account and opens a session.
// The returned verification token is handed to the mail delivery layer; it
// is never sent back to the client.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	slug, err := s.availableSlug(ctx, input.WorkspaceName)
	if err != nil {
		return nil, err
	}
	workspace, err := identity.NewWorkspace(input.WorkspaceName, slug)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(workspace.ID, email, input.Password, input.Name, identity.UserRoleOwner)
	if err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
		}
		return nil, err
	}

	verification, err := identity.NewAuthToken(user.ID, identity.AuthTokenPurposeEmailVerification)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Save(ctx, verification); err != nil {
		// registration stands; the user can request a fresh token
		s.logger.Error("Failed to store verification token",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		verification.Token = ""
	}

	tokens, err := s.issueTokens(workspace.ID, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Workspace registered",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("slug", workspace.Slug),
		zap.String("owner_id", user.ID.String()))

	return &RegisterOutput{
		Workspace:         workspace,
		User:              user,
		Tokens:            tokens,
		VerificationToken: verification.Token,
	}, nil
}

// Login authenticates by email and password and opens a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !user.CheckPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
	}

	workspace, err := s.workspaceRepo.FindByID(ctx, user.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !workspace.IsActive() {
		return nil, shared.NewDomainError("WORKSPACE_SUSPENDED", "Workspace is suspended")
	}

	tokens, err := s.issueTokens(workspace.ID, user)
	if err != nil {
		return nil, err
	}

	// best-effort login stamp
	user.RecordLogin()
	user.IncrementVersion()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record login time",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("workspace_id", workspace.ID.String()))

	return &LoginOutput{Tokens: tokens, User: user}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	if revoked, err := s.isRevoked(ctx, claims); err != nil {
		return nil, err
	} else if revoked {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
	}

	tokens, err := s.jwtService.RefreshTokenPair(refreshToken, user.Email, user.Role)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return tokens, nil
}

// Logout revokes the presented tokens for their remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessClaims *auth.Claims, refreshToken string) error {
	if accessClaims != nil {
		if err := s.blacklist.AddToBlacklist(ctx, accessClaims.ID, accessClaims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		refreshClaims, err := s.jwtService.ValidateRefreshToken(refreshToken)
		if err == nil {
			if err := s.blacklist.AddToBlacklist(ctx, refreshClaims.ID, refreshClaims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChangePassword rotates the password and revokes every open session
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return err
	}
	if !user.CheckPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := user.ChangePassword(input.NewPassword); err != nil {
		return err
	}
	user.IncrementVersion()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.revokeAllSessions(ctx, user.ID)
	return nil
}

// RequestPasswordReset issues a reset token for the email's account. The
// empty return for unknown emails keeps account existence unguessable;
// callers respond identically either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := identity.NewAuthToken(user.ID, identity.AuthTokenPurposePasswordReset)
	if err != nil {
		return "", err
	}
	if err := s.tokenRepo.Save(ctx, token); err != nil {
		return "", err
	}

	s.logger.Info("Password reset requested", zap.String("user_id", user.ID.String()))
	return token.Token, nil
}

// ConfirmPasswordReset redeems a reset token, sets the new password, and
// revokes every open session
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, input ConfirmPasswordResetInput) error {
	token, err := s.consumeToken(ctx, input.Token, identity.AuthTokenPurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.NewPassword); err != nil {
		return err
	}
	user.IncrementVersion()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.revokeAllSessions(ctx, user.ID)

	s.logger.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

// VerifyEmail redeems a verification token and marks the email verified
func (s *AuthService) VerifyEmail(ctx context.Context, tokenValue string) error {
	token, err := s.consumeToken(ctx, tokenValue, identity.AuthTokenPurposeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.VerifyEmail()
	user.IncrementVersion()
	return s.userRepo.Save(ctx, user)
}

// consumeToken looks up and single-use-consumes an auth token, persisting
// the consumption before the caller acts on it
func (s *AuthService) consumeToken(ctx context.Context, tokenValue string, purpose identity.AuthTokenPurpose) (*identity.AuthToken, error) {
	token, err := s.tokenRepo.FindByToken(ctx, tokenValue, purpose)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid or unknown token")
		}
		return nil, err
	}
	if err := token.Consume(); err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *AuthService) issueTokens(workspaceID uuid.UUID, user *identity.User) (*auth.TokenPair, error) {
	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate authentication tokens")
	}
	return tokens, nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return false, err
	}
	if revoked {
		return true, nil
	}
	return s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
}

// revokeAllSessions invalidates every token issued to the user before now.
// Best-effort: a blacklist outage must not block a password change.
func (s *AuthService) revokeAllSessions(ctx context.Context, userID uuid.UUID) {
	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), ttl); err != nil {
		s.logger.Error("Failed to revoke user sessions",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// availableSlug derives a unique slug from the workspace name
func (s *AuthService) availableSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}

	candidate := base
	for i := 2; i <= slugAttempts; i++ {
		taken, err := s.workspaceRepo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	// crowded namespace: random suffix always wins
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8]), nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded; log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
