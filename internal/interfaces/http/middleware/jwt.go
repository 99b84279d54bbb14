package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/infrastructure/auth"
	"github.com/mailriver/backend/internal/infrastructure/logger"
	"github.com/mailriver/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey      = "jwt_claims"
	JWTUserIDKey      = "jwt_user_id"
	JWTWorkspaceIDKey = "jwt_workspace_id"
	JWTEmailKey       = "jwt_email"
	JWTRoleKey        = "jwt_role"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds JWT middleware configuration
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; when set, revoked tokens are rejected
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// JWTAuth creates the JWT authentication middleware. Routes mounted
// behind it always see valid, non-revoked claims.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "UNAUTHORIZED", "Authentication required")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			code, message := tokenErrorCode(err)
			abortUnauthorized(c, cfg.Logger, err, code, message)
			return
		}

		if cfg.Blacklist != nil {
			ctx := c.Request.Context()
			if claims.ID != "" {
				revoked, err := cfg.Blacklist.IsBlacklisted(ctx, claims.ID)
				if err != nil {
					// fail open: a blacklist outage must not take the API down
					if cfg.Logger != nil {
						cfg.Logger.Error("Token blacklist check failed",
							zap.String("jti", claims.ID), zap.Error(err))
					}
				} else if revoked {
					abortUnauthorized(c, cfg.Logger, auth.ErrTokenBlacklisted, "TOKEN_REVOKED", "Token has been revoked")
					return
				}
			}
			if claims.UserID != "" {
				invalidated, err := cfg.Blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
				if err != nil {
					if cfg.Logger != nil {
						cfg.Logger.Error("User token invalidation check failed",
							zap.String("user_id", claims.UserID), zap.Error(err))
					}
				} else if invalidated {
					abortUnauthorized(c, cfg.Logger, auth.ErrTokenBlacklisted, "TOKEN_REVOKED", "Session has been invalidated")
					return
				}
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTWorkspaceIDKey, claims.WorkspaceID)
		c.Set(JWTEmailKey, claims.Email)
		c.Set(JWTRoleKey, claims.Role)

		// enrich the request-scoped logger
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithWorkspaceID(ctx, log, claims.WorkspaceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles restricts a route to the given roles. Mount after JWTAuth.
func RequireRoles(roles ...identity.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortUnauthorized(c, nil, auth.ErrInvalidClaims, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !claims.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient permissions", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

func tokenErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return "TOKEN_REVOKED", "Token has been revoked"
	default:
		return "TOKEN_INVALID", "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, code, message string) {
	if log != nil {
		log.Warn("Authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves the validated claims for the current request
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetWorkspaceID returns the authenticated workspace ID, or uuid.Nil
// when the request is unauthenticated
func GetWorkspaceID(c *gin.Context) uuid.UUID {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, err := claims.GetWorkspaceUUID()
	if err != nil {
		return uuid.Nil
	}
	return id
}

// GetUserID returns the authenticated user ID, or uuid.Nil when the
// request is unauthenticated
func GetUserID(c *gin.Context) uuid.UUID {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil
	}
	return id
}
