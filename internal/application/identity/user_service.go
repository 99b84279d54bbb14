package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
)

// UserService manages workspace member accounts. Owners are created through
// registration; everyone else arrives here.
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// CreateMember adds an account to the workspace. The OWNER role is reserved
// for registration.
func (s *UserService) CreateMember(ctx context.Context, input CreateMemberInput) (*identity.User, error) {
	if input.Role == identity.UserRoleOwner {
		return nil, shared.NewDomainError("INVALID_ROLE", "Workspaces have exactly one owner")
	}

	user, err := identity.NewUser(input.WorkspaceID, input.Email, input.Password, input.Name, input.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
		}
		return nil, err
	}

	s.logger.Info("Workspace member created",
		zap.String("workspace_id", input.WorkspaceID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return user, nil
}

// GetUser returns one user scoped to the workspace
func (s *UserService) GetUser(ctx context.Context, workspaceID, userID uuid.UUID) (*identity.User, error) {
	return s.findUser(ctx, workspaceID, userID)
}

// ListUsers returns a page of the workspace's accounts
func (s *UserService) ListUsers(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) (*shared.Paginated[identity.User], error) {
	users, total, err := s.userRepo.FindByWorkspace(ctx, workspaceID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(users, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SuspendUser locks the account out. Owners cannot be suspended; the
// workspace itself is suspended instead.
func (s *UserService) SuspendUser(ctx context.Context, workspaceID, userID uuid.UUID) (*identity.User, error) {
	user, err := s.findUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == identity.UserRoleOwner {
		return nil, shared.NewDomainError("CANNOT_SUSPEND_OWNER", "The workspace owner cannot be suspended")
	}
	user.Suspend()
	user.IncrementVersion()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User suspended",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", user.ID.String()))

	return user, nil
}

func (s *UserService) findUser(ctx context.Context, workspaceID, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if user.WorkspaceID != workspaceID {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}
	return user, nil
}
