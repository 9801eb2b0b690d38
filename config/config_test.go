package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 12*time.Hour, cfg.SessionCookieTTL)
	assert.Equal(t, "localhost", cfg.SessionCookieDomain)
	assert.Equal(t, 5*time.Minute, cfg.TokenRefreshInterval)
	assert.Equal(t, float64(200), cfg.InitialStackBb)
	assert.Equal(t, "hmac", cfg.AuthProvider)
	assert.Empty(t, cfg.NATSServers)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432")
	t.Setenv("DATABASE_NAME", "summa")
	t.Setenv("SESSION_COOKIE_SECRET", "cookie")
	t.Setenv("SESSION_COOKIE_TTL", "1h")
	t.Setenv("AUTH_HMAC_SECRET", "hmac")
	t.Setenv("INITIAL_STACK_BB", "150")
	t.Setenv("NATS_SERVERS", "nats://nats:4222")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.SessionCookieTTL)
	assert.Equal(t, float64(150), cfg.InitialStackBb)
	assert.Equal(t, "nats://nats:4222", cfg.NATSServers)
	assert.Equal(t, "postgres://u:p@db:5432/summa?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoad_RequiredFields(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
	}{
		{
			name:        "missing database url",
			env:         map[string]string{"SESSION_COOKIE_SECRET": "x", "AUTH_HMAC_SECRET": "y"},
			errContains: "DATABASE_URL is required",
		},
		{
			name:        "missing cookie secret",
			env:         map[string]string{"DATABASE_URL": "postgres://db", "AUTH_HMAC_SECRET": "y"},
			errContains: "SESSION_COOKIE_SECRET is required",
		},
		{
			name: "oidc without issuer",
			env: map[string]string{
				"DATABASE_URL":          "postgres://db",
				"SESSION_COOKIE_SECRET": "x",
				"AUTH_PROVIDER":         "oidc",
			},
			errContains: "OIDC_ISSUER",
		},
		{
			name: "unknown provider",
			env: map[string]string{
				"DATABASE_URL":          "postgres://db",
				"SESSION_COOKIE_SECRET": "x",
				"AUTH_PROVIDER":         "saml",
			},
			errContains: "unknown AUTH_PROVIDER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "production")
			for _, k := range []string{"DATABASE_URL", "SESSION_COOKIE_SECRET", "AUTH_HMAC_SECRET", "AUTH_PROVIDER"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestGet_ReturnsTestConfig(t *testing.T) {
	ResetConfig()
	defer ResetConfig()

	testCfg := NewTestConfig()
	testCfg.InitialStackBb = 300
	SetTestConfig(testCfg)

	assert.Same(t, testCfg, Get())
}
