package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	Log        LogConfig
	Event      EventConfig
	HTTP       HTTPConfig
	Stripe     StripeConfig
	Shipping   ShippingConfig
	Forwarding ForwardingConfig
	Storage    StorageConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// CookieConfig holds cookie settings for the refresh token
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite string // "strict", "lax", or "none"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	MaxSizeMB  int    // rotate after this many megabytes (file output only)
	MaxBackups int    // rotated files to keep
	MaxAgeDays int    // days to keep rotated files
	Compress   bool
}

// EventConfig holds outbox processor configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// StripeConfig holds payment gateway settings
type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	SuccessURL     string
	CancelURL      string
	PortalReturnTo string
}

// ShippingConfig holds shipping-rate gateway settings
type ShippingConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// ForwardingConfig holds fulfillment policy knobs
type ForwardingConfig struct {
	// ServiceFee is the flat handling fee added to every forward, in
	// minor currency units
	ServiceFee int64
	// PriceTolerance is how far, in minor currency units, a re-quoted
	// rate may drift from the quoted price before the purchase is
	// refused
	PriceTolerance int64
	// AssumedTransitDays stands in for rates that carry no delivery
	// estimate so they never win a fastest-option comparison
	AssumedTransitDays int
}

// StorageConfig holds object storage settings for mail scans
type StorageConfig struct {
	Provider        string // "s3" or "stub"
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // non-TLS collector connection, development only
	// DBTraceEnabled adds query spans via otelgorm
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
}

// defaults maps every config key with a built-in fallback to its value.
// Keys absent here (secrets, URLs, CORS origins) default to empty on
// purpose: CORS stays blocked and production validation catches the rest.
var defaults = map[string]any{
	"app.name": "mailriver-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.dbname":             "mailriver",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host": "localhost",
	"redis.port": 6379,

	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 168 * time.Hour,
	"jwt.issuer":                   "mailriver-backend",
	"jwt.max_refresh_count":        30,

	"cookie.path":      "/",
	"cookie.same_site": "lax",

	"log.level":       "info",
	"log.format":      "console",
	"log.output":      "stdout",
	"log.max_size_mb": 100,
	"log.max_backups": 7,
	"log.max_age_days": 28,

	"event.batch_size":        100,
	"event.poll_interval":     5 * time.Second,
	"event.max_retries":       5,
	"event.cleanup_retention": 168 * time.Hour,

	"http.read_timeout":             15 * time.Second,
	"http.write_timeout":            15 * time.Second,
	"http.idle_timeout":             60 * time.Second,
	"http.max_header_bytes":         1 << 20,  // 1MB
	"http.max_body_size":            10 << 20, // 10MB
	"http.rate_limit_requests":      100,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_requests": 5,
	"http.auth_rate_limit_window":   time.Minute,
	"http.cors_allow_methods":       []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":       []string{"Content-Type", "Authorization", "X-Request-ID"},

	"shipping.base_url":    "https://api.easypost.com/v2",
	"shipping.timeout":     30 * time.Second,
	"shipping.max_retries": 2,

	"forwarding.service_fee":          int64(200), // $2.00 handling
	"forwarding.price_tolerance":      int64(500), // $5.00 drift allowance
	"forwarding.assumed_transit_days": 99,

	"storage.provider":    "stub",
	"storage.region":      "us-east-1",
	"storage.presign_ttl": 15 * time.Minute,

	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "mailriver-backend",
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with MAILRIVER_ prefix (e.g. MAILRIVER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file is fine, defaults and env vars cover it
	}

	v.SetEnvPrefix("MAILRIVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Cookie: CookieConfig{
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event.processor_enabled"),
			BatchSize:        v.GetInt("event.batch_size"),
			PollInterval:     v.GetDuration("event.poll_interval"),
			MaxRetries:       v.GetInt("event.max_retries"),
			CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
			CleanupRetention: v.GetDuration("event.cleanup_retention"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Stripe: StripeConfig{
			SecretKey:      v.GetString("stripe.secret_key"),
			WebhookSecret:  v.GetString("stripe.webhook_secret"),
			SuccessURL:     v.GetString("stripe.success_url"),
			CancelURL:      v.GetString("stripe.cancel_url"),
			PortalReturnTo: v.GetString("stripe.portal_return_to"),
		},
		Shipping: ShippingConfig{
			BaseURL:    v.GetString("shipping.base_url"),
			APIKey:     v.GetString("shipping.api_key"),
			Timeout:    v.GetDuration("shipping.timeout"),
			MaxRetries: v.GetInt("shipping.max_retries"),
		},
		Forwarding: ForwardingConfig{
			ServiceFee:         v.GetInt64("forwarding.service_fee"),
			PriceTolerance:     v.GetInt64("forwarding.price_tolerance"),
			AssumedTransitDays: v.GetInt("forwarding.assumed_transit_days"),
		},
		Storage: StorageConfig{
			Provider:        v.GetString("storage.provider"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			PresignTTL:      v.GetDuration("storage.presign_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultInt(v *int, key string) {
	if *v == 0 {
		*v = defaults[key].(int)
	}
}

func defaultInt64(v *int64, key string) {
	if *v == 0 {
		switch d := defaults[key].(type) {
		case int64:
			*v = d
		case int:
			*v = int64(d)
		}
	}
}

func defaultDur(v *time.Duration, key string) {
	if *v == 0 {
		*v = defaults[key].(time.Duration)
	}
}

func defaultStr(v *string, key string) {
	if *v == "" {
		*v = defaults[key].(string)
	}
}

// normalize resets zero-valued knobs to their built-in defaults. Viper
// defaults cover the unset case; this covers a value explicitly set to
// zero or empty, which for these fields always means "use the default".
func (c *Config) normalize() {
	defaultStr(&c.App.Name, "app.name")
	defaultStr(&c.App.Env, "app.env")
	defaultStr(&c.App.Port, "app.port")

	defaultStr(&c.Database.Host, "database.host")
	defaultInt(&c.Database.Port, "database.port")
	defaultStr(&c.Database.User, "database.user")
	defaultStr(&c.Database.DBName, "database.dbname")
	defaultStr(&c.Database.SSLMode, "database.sslmode")
	defaultInt(&c.Database.MaxOpenConns, "database.max_open_conns")
	defaultInt(&c.Database.MaxIdleConns, "database.max_idle_conns")
	defaultInt(&c.Database.ConnMaxLifetime, "database.conn_max_lifetime")
	defaultInt(&c.Database.ConnMaxIdleTime, "database.conn_max_idle_time")

	defaultStr(&c.Redis.Host, "redis.host")
	defaultInt(&c.Redis.Port, "redis.port")

	defaultDur(&c.JWT.AccessTokenExpiration, "jwt.access_token_expiration")
	defaultDur(&c.JWT.RefreshTokenExpiration, "jwt.refresh_token_expiration")
	defaultStr(&c.JWT.Issuer, "jwt.issuer")
	defaultInt(&c.JWT.MaxRefreshCount, "jwt.max_refresh_count")

	defaultStr(&c.Cookie.Path, "cookie.path")
	defaultStr(&c.Cookie.SameSite, "cookie.same_site")

	defaultStr(&c.Log.Level, "log.level")
	defaultStr(&c.Log.Format, "log.format")
	defaultStr(&c.Log.Output, "log.output")
	defaultInt(&c.Log.MaxSizeMB, "log.max_size_mb")
	defaultInt(&c.Log.MaxBackups, "log.max_backups")
	defaultInt(&c.Log.MaxAgeDays, "log.max_age_days")

	defaultInt(&c.Event.BatchSize, "event.batch_size")
	defaultDur(&c.Event.PollInterval, "event.poll_interval")
	defaultInt(&c.Event.MaxRetries, "event.max_retries")
	defaultDur(&c.Event.CleanupRetention, "event.cleanup_retention")

	defaultDur(&c.HTTP.ReadTimeout, "http.read_timeout")
	defaultDur(&c.HTTP.WriteTimeout, "http.write_timeout")
	defaultDur(&c.HTTP.IdleTimeout, "http.idle_timeout")
	defaultInt(&c.HTTP.MaxHeaderBytes, "http.max_header_bytes")
	defaultInt64(&c.HTTP.MaxBodySize, "http.max_body_size")
	defaultInt(&c.HTTP.RateLimitRequests, "http.rate_limit_requests")
	defaultDur(&c.HTTP.RateLimitWindow, "http.rate_limit_window")
	defaultInt(&c.HTTP.AuthRateLimitRequests, "http.auth_rate_limit_requests")
	defaultDur(&c.HTTP.AuthRateLimitWindow, "http.auth_rate_limit_window")
	// CORS origins deliberately have no fallback; an empty list means
	// cross-origin requests stay blocked until configured.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = defaults["http.cors_allow_methods"].([]string)
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = defaults["http.cors_allow_headers"].([]string)
	}

	defaultStr(&c.Shipping.BaseURL, "shipping.base_url")
	defaultDur(&c.Shipping.Timeout, "shipping.timeout")
	defaultInt(&c.Shipping.MaxRetries, "shipping.max_retries")

	defaultInt64(&c.Forwarding.ServiceFee, "forwarding.service_fee")
	defaultInt64(&c.Forwarding.PriceTolerance, "forwarding.price_tolerance")
	defaultInt(&c.Forwarding.AssumedTransitDays, "forwarding.assumed_transit_days")

	defaultStr(&c.Storage.Provider, "storage.provider")
	defaultStr(&c.Storage.Region, "storage.region")
	defaultDur(&c.Storage.PresignTTL, "storage.presign_ttl")

	defaultStr(&c.Telemetry.CollectorEndpoint, "telemetry.collector_endpoint")
	if c.Telemetry.SamplingRatio == 0 {
		c.Telemetry.SamplingRatio = defaults["telemetry.sampling_ratio"].(float64)
	}
	defaultStr(&c.Telemetry.ServiceName, "telemetry.service_name")
	defaultDur(&c.Telemetry.DBSlowQueryThresh, "telemetry.db_slow_query_threshold")
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Forwarding.PriceTolerance < 0 {
		return fmt.Errorf("forwarding.price_tolerance cannot be negative")
	}
	if c.Forwarding.ServiceFee < 0 {
		return fmt.Errorf("forwarding.service_fee cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction rejects settings that are tolerable in development
// but unsafe with real traffic.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if !c.Cookie.Secure {
		return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
	}
	if c.Cookie.SameSite == "none" && !c.Cookie.Secure {
		return fmt.Errorf("cookie.same_site=none requires cookie.secure=true")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secret_key is required in production")
	}
	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("stripe.webhook_secret is required in production")
	}
	if c.Shipping.APIKey == "" {
		return fmt.Errorf("shipping.api_key is required in production")
	}
	if c.Storage.Provider == "stub" {
		return fmt.Errorf("storage.provider cannot be 'stub' in production")
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
