package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// JWTSecret signs access tokens. No default: an unset secret must
	// fail loudly rather than issue forgeable tokens.
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"168"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	AskTopK int `envconfig:"ASK_TOP_K" default:"3"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`

	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"10"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"contractiq-uploads"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN        string  `envconfig:"SENTRY_DSN"`
	SentryEnv        string  `envconfig:"SENTRY_ENVIRONMENT"`
	SentrySampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`

	// LifecycleSweepMinutes controls how often document statuses are
	// recomputed from expiry dates. 0 disables the sweeper.
	LifecycleSweepMinutes int `envconfig:"LIFECYCLE_SWEEP_MINUTES" default:"60"`
	// RenewalWindowDays marks documents "Renewal Due" this many days
	// before expiry.
	RenewalWindowDays int `envconfig:"RENEWAL_WINDOW_DAYS" default:"30"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CONTRACTIQ", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
