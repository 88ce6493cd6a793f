package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string
	Port        int
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string        `toml:"postgres_host"`
	PostgresPort   string        `toml:"postgres_port"`
	PostgresDBName string        `toml:"postgres_db_name"`
	PostgresUser   string        `toml:"postgres_user"`
	StoreTimeout   time.Duration `toml:"store_timeout"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// prometheus
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	// tracing
	HoneycombTracingEnabled bool `toml:"honeycomb_tracing_enabled"`
	// identity
	FirebaseProjectID    string        `toml:"firebase_project_id"`
	FirebaseCertsURL     string        `toml:"firebase_certs_url"`
	TokenCacheTTL        time.Duration `toml:"token_cache_ttl"`
	AllowHMACTokens      bool          `toml:"allow_hmac_tokens"`
	CorsAllowedOrigins   []string      `toml:"cors_allowed_origins"`
	PlanRateLimitAllowed int           `toml:"plan_rate_limit_allowed_per_min"`
	// generative AI
	AIBaseURL        string        `toml:"ai_base_url"`
	AIModels         []string      `toml:"ai_models"`
	AITimeout        time.Duration `toml:"ai_timeout"`
	ImagesEnabled    bool          `toml:"images_enabled"`
	ImagesModel      string        `toml:"images_model"`
	ImagesConcurrent int           `toml:"images_max_concurrent"`
	ImagesCacheBytes int           `toml:"images_cache_bytes"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	var environment string
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, environment = t.Development, "development"
	case "prod", "production":
		cfg, environment = t.Production, "production"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = environment
	cfg.setDefaults()
	return cfg, nil
}

// Load decodes the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.StoreTimeout == 0 {
		c.StoreTimeout = 5 * time.Second
	}
	if c.TokenCacheTTL == 0 {
		c.TokenCacheTTL = 5 * time.Minute
	}
	if c.FirebaseCertsURL == "" {
		c.FirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	}
	if c.PlanRateLimitAllowed == 0 {
		c.PlanRateLimitAllowed = 3
	}
	if c.AIBaseURL == "" {
		c.AIBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if len(c.AIModels) == 0 {
		c.AIModels = []string{"gemini-2.5-flash-lite", "gemini-2.0-flash"}
	}
	if c.AITimeout == 0 {
		c.AITimeout = 2 * time.Minute
	}
	if c.ImagesModel == "" {
		c.ImagesModel = "gemini-2.0-flash-preview-image-generation"
	}
	if c.ImagesConcurrent <= 0 {
		c.ImagesConcurrent = 5
	}
	if c.ImagesCacheBytes <= 0 {
		c.ImagesCacheBytes = 64 * 1024 * 1024
	}
}

// Secrets are never kept in the config file.
type Secrets struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	SentryDSN     string `env:"SENTRY_DSN"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	JWTHMACSecret string `env:"JWT_HMAC_SECRET"`
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process(ctx, &s); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &s, nil
}

// LoadSecretsFrom is LoadSecrets over an explicit lookuper, used in tests.
func LoadSecretsFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var s Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &s, nil
}
