package billing

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds the configuration the usage reporter needs
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`

	// IsTestMode indicates if using Stripe test mode
	IsTestMode bool `json:"is_test_mode" mapstructure:"is_test_mode"`

	// DefaultCurrency is the currency usage charges settle in (e.g., "usd")
	DefaultCurrency string `json:"default_currency" mapstructure:"default_currency"`
}

// Validate checks that the key is present and matches the configured mode,
// so a live key never slips into a test deployment or vice versa.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("stripe: default currency is required")
	}

	wantPrefix, mode := "sk_live", "live"
	if c.IsTestMode {
		wantPrefix, mode = "sk_test", "test"
	}
	if len(c.SecretKey) > len(wantPrefix) && !strings.HasPrefix(c.SecretKey, wantPrefix) {
		return fmt.Errorf("stripe: %s mode enabled but secret key is not a %s key", mode, mode)
	}
	return nil
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
