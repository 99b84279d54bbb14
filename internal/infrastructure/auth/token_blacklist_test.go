package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mailriver/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_RevokesByJTI(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-logout", time.Hour))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-logout")
	require.NoError(t, err)
	assert.True(t, revoked)

	// A token that was never revoked stays valid.
	revoked, err = blacklist.IsBlacklisted(ctx, "jti-still-active")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_DropsEntryAfterTokenExpiry(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-short-lived", time.Millisecond))

	assert.Eventually(t, func() bool {
		revoked, err := blacklist.IsBlacklisted(ctx, "jti-short-lived")
		return err == nil && !revoked
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryTokenBlacklist_ForceLogoutAllSessions(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedBefore := time.Now().Add(-time.Hour)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-ops", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated, "no stamp set yet")

	require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, "user-ops", time.Hour))

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-ops", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated, "tokens minted before the stamp are rejected")

	issuedAfter := time.Now().Add(time.Second)
	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-ops", issuedAfter)
	require.NoError(t, err)
	assert.False(t, invalidated, "tokens minted after the stamp stay valid")

	// The stamp is scoped to one user.
	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-other", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated)
}

func TestInMemoryTokenBlacklist_IndependentEntries(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	var jtis []string
	for i := 0; i < 10; i++ {
		jti := fmt.Sprintf("jti-session-%d", i)
		jtis = append(jtis, jti)
		require.NoError(t, blacklist.AddToBlacklist(ctx, jti, time.Hour))
	}

	for _, jti := range jtis {
		revoked, err := blacklist.IsBlacklisted(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked, jti)
	}

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-untouched")
	require.NoError(t, err)
	assert.False(t, revoked)
}
