package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}

// WorkspaceRepository defines persistence operations for workspaces
type WorkspaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	FindBySlug(ctx context.Context, slug string) (*Workspace, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, workspace *Workspace) error
}

// AuthTokenRepository defines persistence operations for auth tokens
type AuthTokenRepository interface {
	FindByToken(ctx context.Context, token string, purpose AuthTokenPurpose) (*AuthToken, error)
	Save(ctx context.Context, token *AuthToken) error
	DeleteExpired(ctx context.Context) (int64, error)
}
