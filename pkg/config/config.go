// Package config loads the orchestrator configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kart-io/publishhub/pkg/platforms/bluesky"
	"github.com/kart-io/publishhub/pkg/platforms/facebook"
	"github.com/kart-io/publishhub/pkg/platforms/instagram"
	"github.com/kart-io/publishhub/pkg/platforms/linkedin"
	"github.com/kart-io/publishhub/pkg/platforms/mastodon"
	"github.com/kart-io/publishhub/pkg/platforms/pinterest"
	"github.com/kart-io/publishhub/pkg/platforms/tiktok"
	"github.com/kart-io/publishhub/pkg/platforms/twitter"
)

// Config is the full orchestrator configuration.
type Config struct {
	LogLevel string `json:"log_level" yaml:"log_level" env:"PUBLISHHUB_LOG_LEVEL" env-default:"info"`

	// Publish controls the fan-out engine.
	Publish PublishConfig `json:"publish" yaml:"publish"`

	// Retry controls the per-platform retry policy.
	Retry RetryConfig `json:"retry" yaml:"retry"`

	// Queue controls the deferred publish queue.
	Queue QueueConfig `json:"queue" yaml:"queue"`

	// Redis configures the optional Redis backend for the queue and the
	// lifecycle store.
	Redis RedisConfig `json:"redis" yaml:"redis"`

	// AMQP configures the optional result event broker.
	AMQP AMQPConfig `json:"amqp" yaml:"amqp"`

	// Telemetry configures trace and metric export.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// Platforms holds the per-platform adapter configurations.
	Platforms PlatformsConfig `json:"platforms" yaml:"platforms"`
}

// PublishConfig controls the fan-out engine.
type PublishConfig struct {
	MaxWorkers int           `json:"max_workers" yaml:"max_workers" env:"PUBLISHHUB_MAX_WORKERS" env-default:"5"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout" env:"PUBLISHHUB_TIMEOUT" env-default:"60s"`
}

// RetryConfig controls the per-platform retry policy.
type RetryConfig struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts" env:"PUBLISHHUB_RETRY_ATTEMPTS" env-default:"3"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay" env:"PUBLISHHUB_RETRY_BASE_DELAY" env-default:"1s"`
	MaxDelay    time.Duration `json:"max_delay" yaml:"max_delay" env:"PUBLISHHUB_RETRY_MAX_DELAY" env-default:"30s"`
}

// QueueConfig controls the deferred publish queue.
type QueueConfig struct {
	Backend  string `json:"backend" yaml:"backend" env:"PUBLISHHUB_QUEUE_BACKEND" env-default:"memory"`
	Capacity int    `json:"capacity" yaml:"capacity" env:"PUBLISHHUB_QUEUE_CAPACITY" env-default:"1024"`
	Workers  int    `json:"workers" yaml:"workers" env:"PUBLISHHUB_QUEUE_WORKERS" env-default:"4"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" env:"PUBLISHHUB_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `json:"password" yaml:"password" env:"PUBLISHHUB_REDIS_PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"PUBLISHHUB_REDIS_DB" env-default:"0"`
}

// AMQPConfig configures the result event broker.
type AMQPConfig struct {
	URL      string `json:"url" yaml:"url" env:"PUBLISHHUB_AMQP_URL"`
	Exchange string `json:"exchange" yaml:"exchange" env:"PUBLISHHUB_AMQP_EXCHANGE" env-default:"publishhub.results"`
}

// TelemetryConfig configures trace and metric export.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" env:"PUBLISHHUB_TELEMETRY_ENABLED" env-default:"false"`
	Endpoint    string `json:"endpoint" yaml:"endpoint" env:"PUBLISHHUB_OTLP_ENDPOINT" env-default:"localhost:4318"`
	ServiceName string `json:"service_name" yaml:"service_name" env:"PUBLISHHUB_SERVICE_NAME" env-default:"publishhub"`
}

// PlatformsConfig holds the per-platform adapter configurations.
type PlatformsConfig struct {
	Twitter   twitter.Config   `json:"twitter" yaml:"twitter"`
	Mastodon  mastodon.Config  `json:"mastodon" yaml:"mastodon"`
	Bluesky   bluesky.Config   `json:"bluesky" yaml:"bluesky"`
	Instagram instagram.Config `json:"instagram" yaml:"instagram"`
	Facebook  facebook.Config  `json:"facebook" yaml:"facebook"`
	LinkedIn  linkedin.Config  `json:"linkedin" yaml:"linkedin"`
	TikTok    tiktok.Config    `json:"tiktok" yaml:"tiktok"`
	Pinterest pinterest.Config `json:"pinterest" yaml:"pinterest"`
}

// Load reads the configuration from an optional YAML file, then layers
// environment variables on top. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Publish.MaxWorkers <= 0 {
		return fmt.Errorf("publish.max_workers must be positive, got %d", c.Publish.MaxWorkers)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	switch c.Queue.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("queue.backend must be memory or redis, got %q", c.Queue.Backend)
	}
	return nil
}
