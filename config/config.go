package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"summa/database"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `mapstructure:"database_url"`
	DatabaseName string `mapstructure:"database_name"`

	// HTTP server
	ListenAddr string `mapstructure:"listen_addr"`

	// NATS configuration, empty disables cross-instance fan-out
	NATSServers string `mapstructure:"nats_servers"`

	// Session cookie ("token mirror") configuration
	SessionCookieSecret string        `mapstructure:"session_cookie_secret"`
	SessionCookieTTL    time.Duration `mapstructure:"session_cookie_ttl"`
	SessionCookieDomain string        `mapstructure:"session_cookie_domain"`
	SessionCookieSecure bool          `mapstructure:"session_cookie_secure"`

	// Identity provider: "hmac" or "oidc"
	AuthProvider         string        `mapstructure:"auth_provider"`
	AuthHMACSecret       string        `mapstructure:"auth_hmac_secret"`
	OIDCIssuer           string        `mapstructure:"oidc_issuer"`
	OIDCClientID         string        `mapstructure:"oidc_client_id"`
	TokenRefreshInterval time.Duration `mapstructure:"token_refresh_interval"`

	// Game defaults
	InitialStackBb float64 `mapstructure:"initial_stack_bb"`

	// Read cache for user lookups
	UserCacheTTL time.Duration `mapstructure:"user_cache_ttl"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `mapstructure:"otel_enabled"`
	OTelExporterType         string `mapstructure:"otel_exporter_type"` // "console", "otlp" or "none"
	OTelOTLPEndpoint         string `mapstructure:"otel_otlp_endpoint"`
	OTelServiceName          string `mapstructure:"otel_service_name"`
	OTelExportIntervalMillis int    `mapstructure:"otel_export_interval_millis"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" or "json"

	// Environment
	Environment string `mapstructure:"environment"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads configuration from the environment without touching the global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults registers every key so AutomaticEnv can pick it up during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("database_name", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("nats_servers", "")

	v.SetDefault("session_cookie_secret", "")
	// 1000*60*24*30 ms, carried over from the first deployment
	v.SetDefault("session_cookie_ttl", 12*time.Hour)
	v.SetDefault("session_cookie_domain", "localhost")
	v.SetDefault("session_cookie_secure", false)

	v.SetDefault("auth_provider", "hmac")
	v.SetDefault("auth_hmac_secret", "")
	v.SetDefault("oidc_issuer", "")
	v.SetDefault("oidc_client_id", "")
	v.SetDefault("token_refresh_interval", 5*time.Minute)

	v.SetDefault("initial_stack_bb", 200)
	v.SetDefault("user_cache_ttl", 5*time.Minute)

	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_type", "none")
	v.SetDefault("otel_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_service_name", "summa")
	v.SetDefault("otel_export_interval_millis", 10000)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("environment", "development")
}

func (c *Config) validate() error {
	if c.Environment == "test" {
		return nil
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.SessionCookieSecret == "" {
		return fmt.Errorf("SESSION_COOKIE_SECRET is required")
	}

	switch c.AuthProvider {
	case "hmac":
		if c.AuthHMACSecret == "" {
			return fmt.Errorf("AUTH_HMAC_SECRET is required when AUTH_PROVIDER is hmac")
		}
	case "oidc":
		if c.OIDCIssuer == "" || c.OIDCClientID == "" {
			return fmt.Errorf("OIDC_ISSUER and OIDC_CLIENT_ID are required when AUTH_PROVIDER is oidc")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER: %s", c.AuthProvider)
	}

	if c.InitialStackBb < 0 {
		return fmt.Errorf("INITIAL_STACK_BB cannot be negative")
	}

	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		ListenAddr:           ":0",
		SessionCookieSecret:  "test-cookie-secret",
		SessionCookieTTL:     12 * time.Hour,
		SessionCookieDomain:  "localhost",
		AuthProvider:         "hmac",
		AuthHMACSecret:       "test-hmac-secret",
		TokenRefreshInterval: 5 * time.Minute,
		InitialStackBb:       200,
		UserCacheTTL:         time.Minute,
		OTelExporterType:     "none",
		OTelServiceName:      "summa-test",
		LogLevel:             "debug",
		LogFormat:            "text",
	}
}
