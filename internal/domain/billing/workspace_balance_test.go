package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceBalance_Deduct(t *testing.T) {
	t.Run("sufficient balance", func(t *testing.T) {
		b, err := NewWorkspaceBalance(uuid.New(), "USD")
		require.NoError(t, err)
		require.NoError(t, b.Credit(5000))

		require.NoError(t, b.Deduct(1900))
		assert.Equal(t, int64(3100), b.Balance)
		assert.Equal(t, int64(0), b.Debt)
	})

	t.Run("insufficient balance clamps to zero and records debt", func(t *testing.T) {
		b, _ := NewWorkspaceBalance(uuid.New(), "USD")
		require.NoError(t, b.Credit(1000))

		require.NoError(t, b.Deduct(1900))
		assert.Equal(t, int64(0), b.Balance)
		assert.Equal(t, int64(900), b.Debt)
		assert.True(t, b.HasDebt())
	})

	t.Run("zero balance takes full debt", func(t *testing.T) {
		b, _ := NewWorkspaceBalance(uuid.New(), "USD")
		require.NoError(t, b.Deduct(1900))
		assert.Equal(t, int64(0), b.Balance)
		assert.Equal(t, int64(1900), b.Debt)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		b, _ := NewWorkspaceBalance(uuid.New(), "USD")
		require.Error(t, b.Deduct(-1))
	})
}

func TestWorkspaceBalance_Credit(t *testing.T) {
	t.Run("settles debt before adding balance", func(t *testing.T) {
		b, _ := NewWorkspaceBalance(uuid.New(), "USD")
		require.NoError(t, b.Deduct(900))
		require.Equal(t, int64(900), b.Debt)

		require.NoError(t, b.Credit(1500))
		assert.Equal(t, int64(0), b.Debt)
		assert.Equal(t, int64(600), b.Balance)
	})

	t.Run("partial credit only pays down debt", func(t *testing.T) {
		b, _ := NewWorkspaceBalance(uuid.New(), "USD")
		require.NoError(t, b.Deduct(900))

		require.NoError(t, b.Credit(400))
		assert.Equal(t, int64(500), b.Debt)
		assert.Equal(t, int64(0), b.Balance)
	})
}

func TestUsageRecord_Increment(t *testing.T) {
	limit := int64(5)

	t.Run("increments within limit", func(t *testing.T) {
		rec, err := NewUsageRecord(uuid.New(), "forwards", "2026-08")
		require.NoError(t, err)
		require.NoError(t, rec.Increment(1, &limit))
		assert.Equal(t, int64(1), rec.Count)
	})

	t.Run("rejects increment past limit", func(t *testing.T) {
		rec, _ := NewUsageRecord(uuid.New(), "forwards", "2026-08")
		require.NoError(t, rec.Increment(5, &limit))
		require.Error(t, rec.Increment(1, &limit))
		assert.Equal(t, int64(5), rec.Count)
	})

	t.Run("nil limit is unlimited", func(t *testing.T) {
		rec, _ := NewUsageRecord(uuid.New(), "mail_scans", "2026-08")
		require.NoError(t, rec.Increment(1000000, nil))
		assert.Nil(t, rec.Remaining(nil))
	})

	t.Run("rejects malformed period", func(t *testing.T) {
		_, err := NewUsageRecord(uuid.New(), "forwards", "August 2026")
		require.Error(t, err)
	})
}
