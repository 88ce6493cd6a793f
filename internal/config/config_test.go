package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("dev", "testdata/config.toml")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.AllowHMACTokens)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CorsAllowedOrigins)

	// defaults
	assert.Equal(t, "postgres", cfg.PostgresUser)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 5*time.Minute, cfg.TokenCacheTTL)
	assert.Equal(t, 3, cfg.PlanRateLimitAllowed)
	assert.Equal(t, 5, cfg.ImagesConcurrent)
	assert.NotEmpty(t, cfg.AIModels)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("production", "testdata/config.toml")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "fitness", cfg.PostgresUser)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Minute, cfg.TokenCacheTTL)
	assert.Equal(t, 90*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash"}, cfg.AIModels)
	assert.Equal(t, 2, cfg.PlanRateLimitAllowed)
	assert.Equal(t, 4, cfg.ImagesConcurrent)
	assert.False(t, cfg.AllowHMACTokens)
	assert.True(t, cfg.HoneycombTracingEnabled)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("staging", "testdata/config.toml")
	assert.ErrorContains(t, err, "unknown env")

	_, err = Load("dev", "testdata/missing.toml")
	assert.Error(t, err)
}

func TestToml_Get_MissingSection(t *testing.T) {
	tml := &Toml{Development: &Config{}}
	_, err := tml.Get("prod")
	assert.ErrorContains(t, err, "no config section")
}

func TestLoadSecretsFrom(t *testing.T) {
	secrets, err := LoadSecretsFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"GEMINI_API_KEY":  "gemini-key",
		"JWT_HMAC_SECRET": "dev-secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gemini-key", secrets.GeminiAPIKey)
	assert.Equal(t, "dev-secret", secrets.JWTHMACSecret)
	assert.Empty(t, secrets.SentryDSN)
	assert.Empty(t, secrets.RedisPassword)
}
