package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mailriver/backend/internal/domain/shared"
)

// UserRole represents the role of a user within a workspace
type UserRole string

const (
	// UserRoleOwner owns the workspace and its billing relationship
	UserRoleOwner UserRole = "OWNER"
	// UserRoleMember is a regular workspace member
	UserRoleMember UserRole = "MEMBER"
	// UserRoleHandler is operations staff at an office location
	UserRoleHandler UserRole = "HANDLER"
	// UserRoleAdmin administers the platform catalog
	UserRoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is a valid UserRole
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleOwner, UserRoleMember, UserRoleHandler, UserRoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User represents an account that can authenticate against the API
type User struct {
	shared.WorkspaceAggregateRoot
	Email         string
	PasswordHash  string
	Name          string
	Role          UserRole
	Status        UserStatus
	EmailVerified bool
	LastLoginAt   *time.Time
}

// NewUser creates a new active user with a hashed password
func NewUser(workspaceID uuid.UUID, email, password, name string, role UserRole) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invalid user role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		Email:                  email,
		PasswordHash:           string(hash),
		Name:                   strings.TrimSpace(name),
		Role:                   role,
		Status:                 UserStatusActive,
	}, nil
}

// CheckPassword verifies the given plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(newPassword string) error {
	if len(newPassword) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyEmail marks the user's email address as verified
func (u *User) VerifyEmail() {
	u.EmailVerified = true
	u.UpdatedAt = time.Now()
}

// RecordLogin stamps the last successful login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Suspend suspends the user account
func (u *User) Suspend() {
	u.Status = UserStatusSuspended
	u.UpdatedAt = time.Now()
}

// IsActive returns true if the user account is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
