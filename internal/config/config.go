// Package config defines the top-level configuration for the marketplace
// backend and lifecycle daemon, with validation helpers.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYMIRA_* env variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Redis     RedisConfig     `toml:"redis"`
	Lifecycle LifecycleConfig `toml:"lifecycle"`
	Git       GitConfig       `toml:"git"`
	S3        S3Config        `toml:"s3"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig holds the JSON document locations and retention cap.
type StorageConfig struct {
	// DataDir holds forecasts.json, purchases.json, and profiles.json.
	DataDir string `toml:"data_dir"`

	// MaxCards caps the forecast collection; purchased cards survive the cap.
	MaxCards int `toml:"max_cards"`
}

// ForecastsPath returns the forecast document path.
func (s StorageConfig) ForecastsPath() string { return filepath.Join(s.DataDir, "forecasts.json") }

// PurchasesPath returns the purchase ledger path.
func (s StorageConfig) PurchasesPath() string { return filepath.Join(s.DataDir, "purchases.json") }

// ProfilesPath returns the profile document path.
func (s StorageConfig) ProfilesPath() string { return filepath.Join(s.DataDir, "profiles.json") }

// Documents returns all three document paths.
func (s StorageConfig) Documents() []string {
	return []string{s.ForecastsPath(), s.PurchasesPath(), s.ProfilesPath()}
}

// RedisConfig holds Redis connection parameters. Redis is optional; with
// Enabled false the API runs without rate limits or leaderboard caching.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// LifecycleConfig holds the daemon loop parameters.
type LifecycleConfig struct {
	// Interval between cycles, e.g. "5h".
	Interval duration `toml:"interval"`

	// Interpreter runs each script, e.g. "python3".
	Interpreter string `toml:"interpreter"`

	// Scripts are the analysis scripts run at the start of each cycle.
	Scripts []string `toml:"scripts"`
}

// GitConfig holds the data-directory backup parameters.
type GitConfig struct {
	Enabled         bool   `toml:"enabled"`
	Token           string `toml:"token"`
	RepoName        string `toml:"repo_name"`
	CommitterName   string `toml:"committer_name"`
	CommitterEmail  string `toml:"committer_email"`
	RepoDescription string `toml:"repo_description"`
	RepoHomepage    string `toml:"repo_homepage"`
}

// S3Config holds S3-compatible object storage parameters for snapshots.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	Prefix         string `toml:"prefix"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds the alert channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// duration wraps time.Duration for TOML text decoding.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5h" or "30m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

var validModes = map[string]bool{
	"serve":     true,
	"lifecycle": true,
	"full":      true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns the built-in configuration that a TOML file and env
// overrides are merged onto.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			DataDir:  "data",
			MaxCards: 500,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		Lifecycle: LifecycleConfig{
			Interval:    duration{5 * time.Hour},
			Interpreter: "python3",
			Scripts:     []string{"scanner.py", "brain.py"},
		},
		Git: GitConfig{
			CommitterName:  "kolyantrend",
			CommitterEmail: "kolyantrend@users.noreply.github.com",
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// Validate checks the configuration for inconsistencies. It returns a single
// error listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, lifecycle, full)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if c.Storage.DataDir == "" {
		errs = append(errs, "storage: data_dir must not be empty")
	}
	if c.Storage.MaxCards < 1 {
		errs = append(errs, "storage: max_cards must be >= 1")
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	runsLifecycle := c.Mode == "lifecycle" || c.Mode == "full"
	if runsLifecycle {
		if c.Lifecycle.Interval.Duration <= 0 {
			errs = append(errs, "lifecycle: interval must be positive")
		}
		if len(c.Lifecycle.Scripts) > 0 && c.Lifecycle.Interpreter == "" {
			errs = append(errs, "lifecycle: interpreter is required when scripts are configured")
		}
		if c.Git.Enabled && c.Git.Token == "" {
			errs = append(errs, "git: token is required when enabled")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
