package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Session   SessionConfig
	Desktop   DesktopConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	AllowedOrigins  []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig selects and configures the durable blob store.
type StoreConfig struct {
	// Backend is one of memory, file, s3, postgres or remote.
	Backend  string        `envconfig:"STORE_BACKEND" default:"file"`
	Path     string        `envconfig:"STORE_PATH" default:"./data"`
	Backups  int           `envconfig:"STORE_BACKUPS" default:"3"`
	Compress bool          `envconfig:"STORE_COMPRESS" default:"true"`
	Timeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	BreakerFailures uint32        `envconfig:"STORE_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"STORE_BREAKER_COOLDOWN" default:"30s"`

	S3 S3Config

	DatabaseURL string `envconfig:"DATABASE_URL"`

	RemoteURL   string `envconfig:"REMOTE_STORE_URL"`
	RemoteToken string `envconfig:"REMOTE_STORE_TOKEN"`
}

// S3Config holds S3 / MinIO connection settings.
type S3Config struct {
	Endpoint  string `envconfig:"S3_ENDPOINT"`
	Bucket    string `envconfig:"S3_BUCKET" default:"webdesk"`
	Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKey string `envconfig:"S3_ACCESS_KEY"`
	SecretKey string `envconfig:"S3_SECRET_KEY"`
	Prefix    string `envconfig:"S3_PREFIX"`
}

// SessionConfig controls desktop session tokens and lifetime.
type SessionConfig struct {
	Secret    string        `envconfig:"SESSION_SECRET" default:"dev-insecure-secret"`
	TTL       time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	IdleEvict time.Duration `envconfig:"SESSION_IDLE_EVICT" default:"30m"`
	Cookie    string        `envconfig:"SESSION_COOKIE" default:"desk_session"`
}

// DesktopConfig holds desktop defaults.
type DesktopConfig struct {
	SeedFile       string `envconfig:"SEED_FILE"`
	ViewportWidth  int    `envconfig:"VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int    `envconfig:"VIEWPORT_HEIGHT" default:"800"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file":
	case "s3":
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("invalid config: S3_BUCKET is required for the s3 store")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("invalid config: DATABASE_URL is required for the postgres store")
		}
	case "remote":
		if c.Store.RemoteURL == "" {
			return fmt.Errorf("invalid config: REMOTE_STORE_URL is required for the remote store")
		}
	default:
		return fmt.Errorf("invalid config: unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("invalid config: SESSION_SECRET must not be empty")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Backend:         "file",
			Path:            "./data",
			Backups:         3,
			Compress:        true,
			Timeout:         5 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
			S3: S3Config{
				Bucket: "webdesk",
				Region: "us-east-1",
			},
		},
		Session: SessionConfig{
			Secret:    "dev-insecure-secret",
			TTL:       720 * time.Hour,
			IdleEvict: 30 * time.Minute,
			Cookie:    "desk_session",
		},
		Desktop: DesktopConfig{
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
	}
}
