package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/billing"
)

// mockBackend implements stripe.Backend for testing
type mockBackend struct {
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

// testConfig returns a valid test configuration
func testConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:              "sk_test_123456789",
		WebhookSecret:          "whsec_test_123456789",
		IsTestMode:             true,
		DefaultCurrency:        "usd",
		SuccessURL:             "https://app.example.com/billing/success",
		CancelURL:              "https://app.example.com/billing/cancel",
		BillingPortalReturnURL: "https://app.example.com/settings/billing",
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// setupMockBackend installs a mock Stripe backend for the test
func setupMockBackend(handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) func() {
	mock := &mockBackend{handler: handler}
	stripe.SetBackend(stripe.APIBackend, mock)
	return func() {
		stripe.SetBackend(stripe.APIBackend, nil)
	}
}

// ============================================================================
// NewStripeAdapter Tests
// ============================================================================

func TestNewStripeAdapter_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())

	require.NoError(t, err)
	assert.NotNil(t, adapter)
}

func TestNewStripeAdapter_InvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      *StripeConfig
		expectedErr string
	}{
		{
			name: "missing secret key",
			config: &StripeConfig{
				IsTestMode:      true,
				DefaultCurrency: "usd",
			},
			expectedErr: "secret key is required",
		},
		{
			name: "test mode with live key",
			config: &StripeConfig{
				SecretKey:       "sk_live_123456789",
				IsTestMode:      true,
				DefaultCurrency: "usd",
			},
			expectedErr: "test mode enabled but secret key is not a test key",
		},
		{
			name: "live mode with test key",
			config: &StripeConfig{
				SecretKey:       "sk_test_123456789",
				IsTestMode:      false,
				DefaultCurrency: "usd",
			},
			expectedErr: "live mode enabled but secret key is not a live key",
		},
		{
			name: "missing currency",
			config: &StripeConfig{
				SecretKey:  "sk_test_123456789",
				IsTestMode: true,
			},
			expectedErr: "default currency is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := NewStripeAdapter(tt.config, testLogger())

			assert.Error(t, err)
			assert.Nil(t, adapter)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

// ============================================================================
// CreateCustomer Tests
// ============================================================================

func TestCreateCustomer_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "POST" && path == "/v1/customers" {
			return json.Marshal(&stripe.Customer{
				ID:      "cus_test123",
				Email:   "owner@example.com",
				Name:    "Acme Workspace",
				Created: time.Now().Unix(),
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	output, err := adapter.CreateCustomer(context.Background(), CreateCustomerInput{
		WorkspaceID: uuid.New(),
		Email:       "owner@example.com",
		Name:        "Acme Workspace",
	})

	require.NoError(t, err)
	assert.Equal(t, "cus_test123", output.CustomerID)
	assert.Equal(t, "owner@example.com", output.Email)
	assert.Equal(t, "Acme Workspace", output.Name)
}

func TestCreateCustomer_StripeError(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, &stripe.Error{
			Code: stripe.ErrorCodeResourceMissing,
			Msg:  "Invalid email",
		}
	})
	defer cleanup()

	output, err := adapter.CreateCustomer(context.Background(), CreateCustomerInput{
		WorkspaceID: uuid.New(),
		Email:       "owner@example.com",
		Name:        "Acme Workspace",
	})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.Contains(t, err.Error(), "failed to create customer")
}

// ============================================================================
// Checkout Tests
// ============================================================================

func TestCreateSubscriptionCheckout_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "POST" && path == "/v1/checkout/sessions" {
			return json.Marshal(&stripe.CheckoutSession{
				ID:  "cs_test123",
				URL: "https://checkout.stripe.com/c/pay/cs_test123",
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	output, err := adapter.CreateSubscriptionCheckout(context.Background(), SubscriptionCheckoutInput{
		WorkspaceID: uuid.New(),
		CustomerID:  "cus_test123",
		PriceID:     "price_pro_monthly",
		TrialDays:   14,
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test123", output.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test123", output.URL)
}

func TestCreateTopUpCheckout_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "POST" && path == "/v1/checkout/sessions" {
			return json.Marshal(&stripe.CheckoutSession{
				ID:  "cs_topup123",
				URL: "https://checkout.stripe.com/c/pay/cs_topup123",
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	output, err := adapter.CreateTopUpCheckout(context.Background(), TopUpCheckoutInput{
		WorkspaceID: uuid.New(),
		CustomerID:  "cus_test123",
		Amount:      5000,
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_topup123", output.SessionID)
}

func TestCreateTopUpCheckout_NonPositiveAmount(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	output, err := adapter.CreateTopUpCheckout(context.Background(), TopUpCheckoutInput{
		WorkspaceID: uuid.New(),
		CustomerID:  "cus_test123",
		Amount:      0,
	})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.Contains(t, err.Error(), "amount must be positive")
}

func TestCreatePortalSession_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "POST" && path == "/v1/billing_portal/sessions" {
			return json.Marshal(&stripe.BillingPortalSession{
				URL: "https://billing.stripe.com/session/test123",
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	output, err := adapter.CreatePortalSession(context.Background(), "cus_test123")

	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.com/session/test123", output.URL)
}

// ============================================================================
// Subscription Tests
// ============================================================================

func TestGetSubscription_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	now := time.Now()
	periodEnd := now.Add(30 * 24 * time.Hour)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "GET" && path == "/v1/subscriptions/sub_test123" {
			return json.Marshal(&stripe.Subscription{
				ID:                 "sub_test123",
				Customer:           &stripe.Customer{ID: "cus_test123"},
				Status:             stripe.SubscriptionStatusActive,
				CurrentPeriodStart: now.Unix(),
				CurrentPeriodEnd:   periodEnd.Unix(),
				Items: &stripe.SubscriptionItemList{
					Data: []*stripe.SubscriptionItem{
						{
							ID:    "si_test123",
							Price: &stripe.Price{ID: "price_pro_monthly"},
						},
					},
				},
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	state, err := adapter.GetSubscription(context.Background(), "sub_test123")

	require.NoError(t, err)
	assert.Equal(t, "sub_test123", state.SubscriptionID)
	assert.Equal(t, "cus_test123", state.CustomerID)
	assert.Equal(t, "price_pro_monthly", state.PriceID)
	assert.Equal(t, billing.SubscriptionStatusActive, state.Status)
	assert.Equal(t, periodEnd.Unix(), state.CurrentPeriodEnd.Unix())
}

func TestChangePlan_Success(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	now := time.Now()

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "GET" && path == "/v1/subscriptions/sub_test123" {
			return json.Marshal(&stripe.Subscription{
				ID:       "sub_test123",
				Customer: &stripe.Customer{ID: "cus_test123"},
				Status:   stripe.SubscriptionStatusActive,
				Items: &stripe.SubscriptionItemList{
					Data: []*stripe.SubscriptionItem{
						{
							ID:    "si_test123",
							Price: &stripe.Price{ID: "price_basic_monthly"},
						},
					},
				},
			})
		}
		if method == "POST" && path == "/v1/subscriptions/sub_test123" {
			return json.Marshal(&stripe.Subscription{
				ID:                 "sub_test123",
				Customer:           &stripe.Customer{ID: "cus_test123"},
				Status:             stripe.SubscriptionStatusActive,
				CurrentPeriodStart: now.Unix(),
				CurrentPeriodEnd:   now.Add(30 * 24 * time.Hour).Unix(),
				Items: &stripe.SubscriptionItemList{
					Data: []*stripe.SubscriptionItem{
						{
							ID:    "si_test123",
							Price: &stripe.Price{ID: "price_pro_monthly"},
						},
					},
				},
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	state, err := adapter.ChangePlan(context.Background(), ChangePlanInput{
		WorkspaceID:    uuid.New(),
		SubscriptionID: "sub_test123",
		NewPriceID:     "price_pro_monthly",
	})

	require.NoError(t, err)
	assert.Equal(t, "price_pro_monthly", state.PriceID)
	assert.Equal(t, billing.SubscriptionStatusActive, state.Status)
}

func TestChangePlan_NoItems(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "GET" && path == "/v1/subscriptions/sub_test123" {
			return json.Marshal(&stripe.Subscription{
				ID:       "sub_test123",
				Customer: &stripe.Customer{ID: "cus_test123"},
				Status:   stripe.SubscriptionStatusActive,
				Items:    &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{}},
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	state, err := adapter.ChangePlan(context.Background(), ChangePlanInput{
		WorkspaceID:    uuid.New(),
		SubscriptionID: "sub_test123",
		NewPriceID:     "price_pro_monthly",
	})

	assert.Error(t, err)
	assert.Nil(t, state)
	assert.Contains(t, err.Error(), "subscription has no items")
}

func TestCancelSubscription_Immediately(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	now := time.Now()

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "DELETE" && path == "/v1/subscriptions/sub_test123" {
			return json.Marshal(&stripe.Subscription{
				ID:               "sub_test123",
				Customer:         &stripe.Customer{ID: "cus_test123"},
				Status:           stripe.SubscriptionStatusCanceled,
				CurrentPeriodEnd: now.Add(30 * 24 * time.Hour).Unix(),
				CanceledAt:       now.Unix(),
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	state, err := adapter.CancelSubscription(context.Background(), CancelSubscriptionInput{
		WorkspaceID:       uuid.New(),
		SubscriptionID:    "sub_test123",
		CancelAtPeriodEnd: false,
		Reason:            "workspace closed",
	})

	require.NoError(t, err)
	assert.Equal(t, billing.SubscriptionStatusCanceled, state.Status)
	assert.NotNil(t, state.CanceledAt)
	assert.False(t, state.CancelAtPeriodEnd)
}

func TestCancelSubscription_AtPeriodEnd(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	now := time.Now()

	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if method == "POST" && path == "/v1/subscriptions/sub_test123" {
			return json.Marshal(&stripe.Subscription{
				ID:                "sub_test123",
				Customer:          &stripe.Customer{ID: "cus_test123"},
				Status:            stripe.SubscriptionStatusActive,
				CurrentPeriodEnd:  now.Add(30 * 24 * time.Hour).Unix(),
				CancelAtPeriodEnd: true,
			})
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})
	defer cleanup()

	state, err := adapter.CancelSubscription(context.Background(), CancelSubscriptionInput{
		WorkspaceID:       uuid.New(),
		SubscriptionID:    "sub_test123",
		CancelAtPeriodEnd: true,
	})

	require.NoError(t, err)
	assert.Equal(t, billing.SubscriptionStatusActive, state.Status)
	assert.True(t, state.CancelAtPeriodEnd)
	assert.Nil(t, state.CanceledAt)
}

// ============================================================================
// Webhook Tests
// ============================================================================

func TestVerifyWebhook_InvalidSignature(t *testing.T) {
	adapter, err := NewStripeAdapter(testConfig(), testLogger())
	require.NoError(t, err)

	event, err := adapter.VerifyWebhook([]byte(`{"id":"evt_test"}`), "t=123,v1=bogus")

	assert.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "webhook signature verification failed")
}

// ============================================================================
// Status Mapping Tests
// ============================================================================

func TestMapStripeSubscriptionStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    stripe.SubscriptionStatus
		expected billing.SubscriptionStatus
	}{
		{"active", stripe.SubscriptionStatusActive, billing.SubscriptionStatusActive},
		{"trialing", stripe.SubscriptionStatusTrialing, billing.SubscriptionStatusTrialing},
		{"past_due", stripe.SubscriptionStatusPastDue, billing.SubscriptionStatusPastDue},
		{"paused", stripe.SubscriptionStatusPaused, billing.SubscriptionStatusPastDue},
		{"canceled", stripe.SubscriptionStatusCanceled, billing.SubscriptionStatusCanceled},
		{"incomplete_expired", stripe.SubscriptionStatusIncompleteExpired, billing.SubscriptionStatusCanceled},
		{"incomplete", stripe.SubscriptionStatusIncomplete, billing.SubscriptionStatusUnpaid},
		{"unpaid", stripe.SubscriptionStatusUnpaid, billing.SubscriptionStatusUnpaid},
		{"unknown", stripe.SubscriptionStatus("unknown"), billing.SubscriptionStatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapStripeSubscriptionStatus(tt.input))
		})
	}
}
