// Package config loads the relay server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the relay server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Router    RouterConfig    `yaml:"router"`
	Stream    StreamConfig    `yaml:"stream"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	// Origins allowed by CORS; empty disables CORS headers, "*" allows any.
	CORSOrigins []string `yaml:"cors_origins"`
}

// RouterConfig holds message routing settings.
type RouterConfig struct {
	PushTimeout time.Duration `yaml:"push_timeout"`
	// "drop" reports dropped_inactive; "not_found" reports the recipient as unknown.
	InactivePolicy string `yaml:"inactive_policy"`
}

// StreamConfig holds streaming delivery settings.
type StreamConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// WebhookConfig holds callback push settings.
type WebhookConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	ResetTimeout     time.Duration `yaml:"reset_timeout"`
}

// WebSocketConfig holds websocket push settings.
type WebSocketConfig struct {
	Enabled      bool          `yaml:"enabled"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PongWait     time.Duration `yaml:"pong_wait"`
}

// RateLimitConfig holds per-sender send limits.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	PerSecond       float64       `yaml:"per_second"`
	Burst           int           `yaml:"burst"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig holds OpenTelemetry metrics settings.
type MetricsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	OTLPEndpoint string        `yaml:"otlp_endpoint"`
	ServiceName  string        `yaml:"service_name"`
	Interval     time.Duration `yaml:"interval"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":5000",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Router: RouterConfig{
			PushTimeout:    2 * time.Second,
			InactivePolicy: "drop",
		},
		Stream: StreamConfig{
			PollInterval: time.Second,
		},
		Webhook: WebhookConfig{
			Enabled:          true,
			Timeout:          2 * time.Second,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		WebSocket: WebSocketConfig{
			Enabled:      true,
			WriteTimeout: 5 * time.Second,
			PongWait:     60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:         false,
			PerSecond:       10,
			Burst:           20,
			CleanupInterval: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "relaychat",
			Interval:     15 * time.Second,
		},
	}
}

// Load reads configuration from a YAML file over the defaults. An empty
// filename or a missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if c.Router.PushTimeout <= 0 {
		return fmt.Errorf("router.push_timeout must be positive")
	}
	switch c.Router.InactivePolicy {
	case "drop", "not_found":
	default:
		return fmt.Errorf("router.inactive_policy must be one of: drop, not_found")
	}

	if c.Stream.PollInterval < 10*time.Millisecond {
		return fmt.Errorf("stream.poll_interval must be at least 10ms")
	}

	if c.Webhook.Enabled {
		if c.Webhook.Timeout <= 0 {
			return fmt.Errorf("webhook.timeout must be positive")
		}
		if c.Webhook.FailureThreshold == 0 {
			return fmt.Errorf("webhook.failure_threshold must be at least 1")
		}
		if c.Webhook.ResetTimeout <= 0 {
			return fmt.Errorf("webhook.reset_timeout must be positive")
		}
	}

	if c.WebSocket.Enabled {
		if c.WebSocket.WriteTimeout <= 0 {
			return fmt.Errorf("websocket.write_timeout must be positive")
		}
		if c.WebSocket.PongWait < time.Second {
			return fmt.Errorf("websocket.pong_wait must be at least 1 second")
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.PerSecond <= 0 {
			return fmt.Errorf("rate_limit.per_second must be positive")
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit.burst must be at least 1")
		}
		if c.RateLimit.CleanupInterval <= 0 {
			return fmt.Errorf("rate_limit.cleanup_interval must be positive")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be one of: text, json")
	}

	if c.Metrics.Enabled {
		if c.Metrics.OTLPEndpoint == "" {
			return fmt.Errorf("metrics.otlp_endpoint required when metrics are enabled")
		}
		if c.Metrics.Interval <= 0 {
			return fmt.Errorf("metrics.interval must be positive")
		}
	}

	return nil
}
