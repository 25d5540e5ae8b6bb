package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
mode = "full"
log_level = "debug"

[server]
port = 9090

[storage]
data_dir = "/var/lib/polymira"

[lifecycle]
interval = "2h"
scripts = ["scanner.py"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "full", cfg.Mode)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/polymira", cfg.Storage.DataDir)
	assert.Equal(t, 2*time.Hour, cfg.Lifecycle.Interval.Duration)
	assert.Equal(t, []string{"scanner.py"}, cfg.Lifecycle.Scripts)

	// Untouched fields keep their defaults.
	assert.Equal(t, 500, cfg.Storage.MaxCards)
	assert.Equal(t, "python3", cfg.Lifecycle.Interpreter)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
`)

	t.Setenv("POLYMIRA_SERVER_PORT", "7070")
	t.Setenv("POLYMIRA_REDIS_ENABLED", "true")
	t.Setenv("POLYMIRA_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestStorageConfig_Documents(t *testing.T) {
	s := StorageConfig{DataDir: "data"}
	assert.Equal(t, []string{
		filepath.Join("data", "forecasts.json"),
		filepath.Join("data", "purchases.json"),
		filepath.Join("data", "profiles.json"),
	}, s.Documents())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Mode = "turbo" },
			wantErr: "unknown mode",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "port must be",
		},
		{
			name:    "max_cards",
			mutate:  func(c *Config) { c.Storage.MaxCards = 0 },
			wantErr: "max_cards",
		},
		{
			name: "git token required in lifecycle mode",
			mutate: func(c *Config) {
				c.Mode = "lifecycle"
				c.Git.Enabled = true
			},
			wantErr: "git: token is required",
		},
		{
			name: "s3 bucket required when enabled",
			mutate: func(c *Config) {
				c.S3.Enabled = true
				c.S3.Region = "us-east-1"
			},
			wantErr: "s3: bucket",
		},
		{
			name:    "telegram fields together",
			mutate:  func(c *Config) { c.Notify.TelegramToken = "tok" },
			wantErr: "telegram_token and telegram_chat_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
