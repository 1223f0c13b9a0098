package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/types"
)

type Configuration struct {
	Deployment   DeploymentConfig   `mapstructure:"deployment"`
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	Email        EmailConfig        `mapstructure:"email"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Cancellation CancellationConfig `mapstructure:"cancellation"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

type DeploymentConfig struct {
	Mode types.DeploymentMode `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type AuthConfig struct {
	Provider types.AuthProvider `mapstructure:"provider"`
	Secret   string             `mapstructure:"secret"`
	Supabase SupabaseConfig     `mapstructure:"supabase"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
}

type CacheConfig struct {
	// TTL for validated auth tokens in the middleware cache.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// CancellationConfig tunes the synthetic-id resolution heuristic. The window
// and tie-break policy are deliberately configuration, not constants.
type CancellationConfig struct {
	// ResolutionWindow bounds |provider created - local created_at| when
	// matching a synthetic id to a real provider subscription (strict <).
	ResolutionWindow time.Duration `mapstructure:"resolution_window"`
	// FailOnAmbiguousMatch turns a multi-match resolution into a hard
	// failure instead of taking the first match in provider order.
	FailOnAmbiguousMatch bool `mapstructure:"fail_on_ambiguous_match"`
	// RetryWithSyntheticID forwards the unresolved synthetic id to the
	// provider cancel call instead of failing fast on no-match.
	RetryWithSyntheticID bool `mapstructure:"retry_with_synthetic_id"`
	// ProviderListLimit caps the subscriptions.list page size.
	ProviderListLimit int64 `mapstructure:"provider_list_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// NewConfig loads configuration from config files and environment variables.
// A local .env is honored for development parity with the hosting platform.
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("RESUMEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrValidation)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrValidation)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("auth.provider", string(types.AuthProviderSupabase))
	v.SetDefault("cache.token_ttl", 5*time.Minute)
	v.SetDefault("cancellation.resolution_window", 24*time.Hour)
	v.SetDefault("cancellation.provider_list_limit", 100)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c *Configuration) Validate() error {
	if c.Auth.Supabase.BaseURL == "" || c.Auth.Supabase.ServiceKey == "" {
		return ierr.NewError("supabase base url and service key are required").
			WithHint("Set RESUMEFORGE_AUTH_SUPABASE_BASE_URL and RESUMEFORGE_AUTH_SUPABASE_SERVICE_KEY").
			Mark(ierr.ErrValidation)
	}
	if c.Stripe.SecretKey == "" {
		return ierr.NewError("stripe secret key is required").
			WithHint("Set RESUMEFORGE_STRIPE_SECRET_KEY").
			Mark(ierr.ErrValidation)
	}
	if c.Cancellation.ResolutionWindow <= 0 {
		return ierr.NewError("cancellation resolution window must be positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a minimal configuration for scripts and tests
// that do not need external collaborators wired.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeAPI},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Cache:      CacheConfig{TokenTTL: 5 * time.Minute},
		Cancellation: CancellationConfig{
			ResolutionWindow:  24 * time.Hour,
			ProviderListLimit: 100,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
	}
}
