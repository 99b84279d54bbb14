package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/infrastructure/config"
)

func jwtTestConfig(overrides ...func(*config.JWTConfig)) config.JWTConfig {
	cfg := config.JWTConfig{
		Secret:                 "mailriver-access-secret-32-chars!",
		RefreshSecret:          "mailriver-refresh-secret-32-char!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "mailriver",
		MaxRefreshCount:        10,
	}
	for _, o := range overrides {
		o(&cfg)
	}
	return cfg
}

func ownerTokenInput() GenerateTokenInput {
	return GenerateTokenInput{
		WorkspaceID: uuid.New(),
		UserID:      uuid.New(),
		Email:       "owner@example.com",
		Role:        identity.UserRoleOwner,
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := jwtTestConfig()
	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
	assert.Equal(t, []byte(cfg.RefreshSecret), svc.refreshSecret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.accessExpiration)
	assert.Equal(t, cfg.RefreshTokenExpiration, svc.refreshExpiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
	assert.Equal(t, cfg.MaxRefreshCount, svc.maxRefreshCount)
}

func TestNewJWTService_RefreshSecretFallsBackToSecret(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(func(c *config.JWTConfig) {
		c.RefreshSecret = ""
	}))

	assert.Equal(t, svc.accessSecret, svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())
	input := ownerTokenInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.WorkspaceID.String(), access.WorkspaceID)
	assert.Equal(t, input.UserID.String(), access.UserID)
	assert.Equal(t, input.Email, access.Email)
	assert.Equal(t, string(identity.UserRoleOwner), access.Role)
	assert.Equal(t, TokenTypeAccess, access.TokenType)

	// The refresh token never carries email or role; those are
	// re-read from the user record on refresh.
	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Email)
	assert.Empty(t, refresh.Role)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.Zero(t, refresh.RefreshCount)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(func(c *config.JWTConfig) {
		c.AccessTokenExpiration = -time.Hour
	}))

	pair, err := svc.GenerateTokenPair(ownerTokenInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsCrossTypeUse(t *testing.T) {
	// Same secret for both families so only the token_type claim can
	// tell them apart.
	svc := NewJWTService(jwtTestConfig(func(c *config.JWTConfig) {
		c.RefreshSecret = c.Secret
	}))

	pair, err := svc.GenerateTokenPair(ownerTokenInput())
	require.NoError(t, err)

	t.Run("refresh token as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("access token as refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("access token in refresh flow", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken, "owner@example.com", identity.UserRoleOwner)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestValidateToken_RejectsMissingIdentityClaims(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())

	sign := func(claims *Claims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.accessSecret)
		require.NoError(t, err)
		return token
	}

	now := time.Now()
	base := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	_, err := svc.ValidateAccessToken(sign(&Claims{
		RegisteredClaims: base,
		UserID:           uuid.New().String(),
		TokenType:        TokenTypeAccess,
	}))
	assert.ErrorIs(t, err, ErrMissingWorkspaceID)

	_, err = svc.ValidateAccessToken(sign(&Claims{
		RegisteredClaims: base,
		WorkspaceID:      uuid.New().String(),
		TokenType:        TokenTypeAccess,
	}))
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuing := NewJWTService(jwtTestConfig())
	verifying := NewJWTService(jwtTestConfig(func(c *config.JWTConfig) {
		c.Secret = "a-completely-different-secret-32!"
	}))

	pair, err := issuing.GenerateTokenPair(ownerTokenInput())
	require.NoError(t, err)

	_, err = verifying.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenPair_RotatesAndUpdatesRole(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())
	input := ownerTokenInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	// Role was demoted between login and refresh.
	newPair, err := svc.RefreshTokenPair(pair.RefreshToken, input.Email, identity.UserRoleMember)
	require.NoError(t, err)

	assert.NotEqual(t, pair.AccessToken, newPair.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	claims, err := svc.ValidateAccessToken(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(identity.UserRoleMember), claims.Role)
	assert.Equal(t, input.WorkspaceID.String(), claims.WorkspaceID)
}

func TestRefreshTokenPair_CountsRefreshes(t *testing.T) {
	svc := NewJWTService(jwtTestConfig(func(c *config.JWTConfig) {
		c.MaxRefreshCount = 2
	}))
	input := ownerTokenInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	for want := 1; want <= 2; want++ {
		pair, err = svc.RefreshTokenPair(pair.RefreshToken, input.Email, input.Role)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, want, claims.RefreshCount)
	}

	_, err = svc.RefreshTokenPair(pair.RefreshToken, input.Email, input.Role)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestRefreshTokenPair_InvalidToken(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())

	_, err := svc.RefreshTokenPair("invalid-token", "", identity.UserRoleMember)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_UUIDAccessors(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())
	input := ownerTokenInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	workspaceUUID, err := claims.GetWorkspaceUUID()
	require.NoError(t, err)
	assert.Equal(t, input.WorkspaceID, workspaceUUID)

	userUUID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userUUID)
}

func TestClaims_Roles(t *testing.T) {
	claims := &Claims{Role: string(identity.UserRoleHandler)}

	assert.Equal(t, identity.UserRoleHandler, claims.GetRole())
	assert.True(t, claims.HasRole(identity.UserRoleHandler))
	assert.True(t, claims.HasRole(identity.UserRoleAdmin, identity.UserRoleHandler))
	assert.False(t, claims.HasRole(identity.UserRoleOwner, identity.UserRoleMember))
}

func TestClaims_TimeAccessors(t *testing.T) {
	t.Run("populated", func(t *testing.T) {
		svc := NewJWTService(jwtTestConfig())
		pair, err := svc.GenerateTokenPair(ownerTokenInput())
		require.NoError(t, err)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.False(t, claims.GetIssuedAtTime().IsZero())
		assert.False(t, claims.GetExpiresAtTime().IsZero())
		ttl := claims.GetRemainingTTL()
		assert.Greater(t, ttl, 14*time.Minute)
		assert.LessOrEqual(t, ttl, 15*time.Minute)
	})

	t.Run("absent claims", func(t *testing.T) {
		claims := &Claims{}

		assert.True(t, claims.GetIssuedAtTime().IsZero())
		assert.True(t, claims.GetExpiresAtTime().IsZero())
		assert.Zero(t, claims.GetRemainingTTL())
	})

	t.Run("expired yields zero ttl", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}

		assert.Zero(t, claims.GetRemainingTTL())
	})
}

func TestJWTService_ExpirationAccessors(t *testing.T) {
	svc := NewJWTService(jwtTestConfig())

	assert.Equal(t, 15*time.Minute, svc.GetAccessTokenExpiration())
	assert.Equal(t, 7*24*time.Hour, svc.GetRefreshTokenExpiration())
}
