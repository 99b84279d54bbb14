package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/infrastructure/auth"
	"github.com/mailriver/backend/internal/infrastructure/config"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "mailriver-test",
		MaxRefreshCount:        5,
	})
}

func issueTestToken(t *testing.T, svc *auth.JWTService, role identity.UserRole) (*auth.TokenPair, uuid.UUID, uuid.UUID) {
	t.Helper()
	workspaceID := uuid.New()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Email:       "jamie@example.com",
		Role:        role,
	})
	require.NoError(t, err)
	return pair, workspaceID, userID
}

func authTestRouter(svc *auth.JWTService, blacklist auth.TokenBlacklist, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	handlers := []gin.HandlerFunc{JWTAuth(JWTMiddlewareConfig{JWTService: svc, Blacklist: blacklist})}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"workspace_id": GetWorkspaceID(c).String(),
			"user_id":      GetUserID(c).String(),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	pair, workspaceID, userID := issueTestToken(t, svc, identity.UserRoleOwner)
	r := authTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, workspaceID.String(), body["workspace_id"])
	assert.Equal(t, userID.String(), body["user_id"])
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	r := authTestRouter(newTestJWTService(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	r := authTestRouter(newTestJWTService(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestJWTAuth_RefreshTokenRejectedOnAccessRoute(t *testing.T) {
	svc := newTestJWTService()
	pair, _, _ := issueTestToken(t, svc, identity.UserRoleOwner)
	r := authTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_BlacklistedTokenRejected(t *testing.T) {
	svc := newTestJWTService()
	pair, _, _ := issueTestToken(t, svc, identity.UserRoleOwner)
	blacklist := auth.NewInMemoryTokenBlacklist()

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Hour))

	r := authTestRouter(svc, blacklist)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestRequireRoles_Allowed(t *testing.T) {
	svc := newTestJWTService()
	pair, _, _ := issueTestToken(t, svc, identity.UserRoleAdmin)
	r := authTestRouter(svc, nil, RequireRoles(identity.UserRoleAdmin))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles_Forbidden(t *testing.T) {
	svc := newTestJWTService()
	pair, _, _ := issueTestToken(t, svc, identity.UserRoleMember)
	r := authTestRouter(svc, nil, RequireRoles(identity.UserRoleAdmin, identity.UserRoleHandler))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}
