package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Router.PushTimeout)
	assert.Equal(t, "drop", cfg.Router.InactivePolicy)
	assert.Equal(t, time.Second, cfg.Stream.PollInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "default config is valid", modify: func(c *Config) {}},
		{name: "empty addr", modify: func(c *Config) { c.Server.Addr = "" }, wantErr: true},
		{name: "zero push timeout", modify: func(c *Config) { c.Router.PushTimeout = 0 }, wantErr: true},
		{name: "unknown inactive policy", modify: func(c *Config) { c.Router.InactivePolicy = "queue" }, wantErr: true},
		{name: "not_found policy", modify: func(c *Config) { c.Router.InactivePolicy = "not_found" }},
		{name: "tiny poll interval", modify: func(c *Config) { c.Stream.PollInterval = time.Millisecond }, wantErr: true},
		{name: "webhook without threshold", modify: func(c *Config) { c.Webhook.FailureThreshold = 0 }, wantErr: true},
		{
			name: "disabled webhook skips its checks",
			modify: func(c *Config) {
				c.Webhook.Enabled = false
				c.Webhook.FailureThreshold = 0
			},
		},
		{name: "short pong wait", modify: func(c *Config) { c.WebSocket.PongWait = 100 * time.Millisecond }, wantErr: true},
		{
			name: "rate limit without burst",
			modify: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.Burst = 0
			},
			wantErr: true,
		},
		{name: "bad log level", modify: func(c *Config) { c.Log.Level = "trace" }, wantErr: true},
		{name: "bad log format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{
			name: "metrics without endpoint",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.OTLPEndpoint = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := `
server:
  addr: "127.0.0.1:6000"
  cors_origins: ["http://localhost:3000"]
router:
  push_timeout: 500ms
  inactive_policy: not_found
stream:
  poll_interval: 250ms
rate_limit:
  enabled: true
  per_second: 2
  burst: 4
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.Router.PushTimeout)
	assert.Equal(t, "not_found", cfg.Router.InactivePolicy)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.PollInterval)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched sections keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.WebSocket.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [not a map"), 0o600))
	_, err := Load(bad)
	require.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("router:\n  inactive_policy: maybe\n"), 0o600))
	_, err = Load(invalid)
	require.ErrorContains(t, err, "inactive_policy")
}
