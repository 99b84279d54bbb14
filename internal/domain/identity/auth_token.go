package identity

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/mailriver/backend/internal/domain/shared"
)

// AuthTokenPurpose represents what an auth token can be used for
type AuthTokenPurpose string

const (
	AuthTokenPurposePasswordReset     AuthTokenPurpose = "PASSWORD_RESET"
	AuthTokenPurposeEmailVerification AuthTokenPurpose = "EMAIL_VERIFICATION"
)

// DefaultAuthTokenTTL is how long a freshly issued token stays valid
const DefaultAuthTokenTTL = 24 * time.Hour

// AuthToken is a single-use token for password reset or email verification
type AuthToken struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Token     string
	Purpose   AuthTokenPurpose
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// NewAuthToken issues a fresh token for the given user and purpose
func NewAuthToken(userID uuid.UUID, purpose AuthTokenPurpose) (*AuthToken, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	return &AuthToken{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Token:      hex.EncodeToString(raw),
		Purpose:    purpose,
		ExpiresAt:  time.Now().Add(DefaultAuthTokenTTL),
	}, nil
}

// IsExpired returns true if the token has passed its expiry
func (t *AuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsUsed returns true if the token was already consumed
func (t *AuthToken) IsUsed() bool {
	return t.UsedAt != nil
}

// Consume marks the token as used. A token can be consumed exactly once,
// and only before its expiry.
func (t *AuthToken) Consume() error {
	if t.IsUsed() {
		return shared.NewDomainError("TOKEN_USED", "Token has already been used")
	}
	if t.IsExpired() {
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	}
	now := time.Now()
	t.UsedAt = &now
	t.UpdatedAt = now
	return nil
}
