package shipping

import (
	"errors"
)

// EasyPostConfig holds configuration for the EasyPost rate aggregator
type EasyPostConfig struct {
	// APIKey is the secret API key (test or production)
	APIKey string
	// APIBaseURL is the base URL for the EasyPost API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxRetries is how many times transient failures are retried
	MaxRetries int
}

// EasyPostProductionAPIURL is the production API endpoint
const EasyPostProductionAPIURL = "https://api.easypost.com/v2"

// Errors for EasyPost configuration
var (
	ErrEasyPostConfigMissingAPIKey = errors.New("easypost: API key is required")
)

// NewEasyPostConfig creates a new EasyPost configuration with defaults
func NewEasyPostConfig(apiKey string) *EasyPostConfig {
	return &EasyPostConfig{
		APIKey:         apiKey,
		APIBaseURL:     EasyPostProductionAPIURL,
		TimeoutSeconds: 30,
		MaxRetries:     2,
	}
}

// Validate validates the EasyPost configuration
func (c *EasyPostConfig) Validate() error {
	if c.APIKey == "" {
		return ErrEasyPostConfigMissingAPIKey
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = EasyPostProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return nil
}
