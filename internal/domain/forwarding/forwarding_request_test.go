package forwarding

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailriver/backend/internal/domain/shared"
)

func validRate() RateSelection {
	return RateSelection{
		RateID:   "rate_123",
		Carrier:  "USPS",
		Service:  "Priority",
		Fee:      1250,
		Currency: "USD",
	}
}

func newTestRequest(t *testing.T) *ForwardingRequest {
	t.Helper()
	cost, err := NewCostBreakdown(1250, 300, 150, 200)
	require.NoError(t, err)
	req, err := NewForwardingRequest(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		nil, nil, validRate(), cost, PriorityNormal,
	)
	require.NoError(t, err)
	return req
}

func TestNewCostBreakdown(t *testing.T) {
	t.Run("total is sum of components", func(t *testing.T) {
		cost, err := NewCostBreakdown(1250, 300, 150, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(1900), cost.Total)
	})

	t.Run("rejects negative component", func(t *testing.T) {
		_, err := NewCostBreakdown(1250, -1, 0, 0)
		require.Error(t, err)
		assert.Equal(t, "INVALID_COST", err.(*shared.DomainError).Code)
	})
}

func TestNewForwardingRequest(t *testing.T) {
	t.Run("starts pending with payment pending", func(t *testing.T) {
		req := newTestRequest(t)
		assert.Equal(t, RequestStatusPending, req.Status)
		assert.Equal(t, PaymentStatusPending, req.PaymentStatus)
		assert.Equal(t, "USPS", req.Carrier)
		assert.Equal(t, "Priority", req.Service)
		assert.Len(t, req.GetDomainEvents(), 1)
	})

	t.Run("rejects rate without carrier", func(t *testing.T) {
		rate := validRate()
		rate.Carrier = ""
		cost, _ := NewCostBreakdown(1250, 0, 0, 200)
		_, err := NewForwardingRequest(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			nil, nil, rate, cost, PriorityNormal,
		)
		require.Error(t, err)
		assert.Equal(t, "INVALID_RATE", err.(*shared.DomainError).Code)
	})

	t.Run("rejects empty mail item", func(t *testing.T) {
		cost, _ := NewCostBreakdown(1250, 0, 0, 200)
		_, err := NewForwardingRequest(
			uuid.New(), uuid.Nil, uuid.New(), uuid.New(), uuid.New(),
			nil, nil, validRate(), cost, PriorityNormal,
		)
		require.Error(t, err)
	})
}

func TestForwardingRequest_AttachLabel(t *testing.T) {
	t.Run("moves pending to label purchased", func(t *testing.T) {
		req := newTestRequest(t)
		err := req.AttachLabel("shp_1", "rate_123", "9400100000000000000000", "https://labels/1.pdf", []byte(`{"rate":"12.50"}`))
		require.NoError(t, err)
		assert.Equal(t, RequestStatusLabelPurchased, req.Status)
		assert.True(t, req.HasTracking())
	})

	t.Run("rejected after failure", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.MarkFailed("rate no longer available"))
		err := req.AttachLabel("shp_1", "rate_123", "track", "url", nil)
		require.Error(t, err)
	})
}

func TestForwardingRequest_Complete(t *testing.T) {
	t.Run("completes a purchased request", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.AttachLabel("shp_1", "rate_123", "track", "url", nil))
		require.NoError(t, req.Complete())
		assert.Equal(t, RequestStatusCompleted, req.Status)
		assert.NotNil(t, req.CompletedAt)
	})

	t.Run("completing twice fails", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Complete())
		err := req.Complete()
		require.Error(t, err)
		assert.Equal(t, "ALREADY_COMPLETED", err.(*shared.DomainError).Code)
	})

	t.Run("cannot complete a cancelled request", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Cancel())
		require.Error(t, req.Complete())
	})
}

func TestForwardingRequest_Cancel(t *testing.T) {
	t.Run("cancels a pending request", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Cancel())
		assert.Equal(t, RequestStatusCancelled, req.Status)
		assert.NotNil(t, req.CancelledAt)
	})

	t.Run("cancels a purchased request", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.AttachLabel("shp_1", "rate_123", "track", "url", nil))
		require.NoError(t, req.Cancel())
	})

	t.Run("cannot cancel a completed request", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Complete())
		err := req.Cancel()
		require.Error(t, err)
		assert.Equal(t, "CANNOT_CANCEL_COMPLETED", err.(*shared.DomainError).Code)
	})
}

func TestForwardingRequest_MarkFailed(t *testing.T) {
	req := newTestRequest(t)
	require.NoError(t, req.MarkFailed("price moved beyond tolerance"))
	assert.Equal(t, RequestStatusFailed, req.Status)
	assert.Equal(t, "price moved beyond tolerance", req.FailureReason)

	// terminal
	require.Error(t, req.Cancel())
	require.Error(t, req.Complete())
}
