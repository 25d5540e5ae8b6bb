package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYMIRA_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYMIRA_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "POLYMIRA_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYMIRA_SERVER_CORS_ORIGINS")

	// ── Storage ──
	setStr(&cfg.Storage.DataDir, "POLYMIRA_STORAGE_DATA_DIR")
	setInt(&cfg.Storage.MaxCards, "POLYMIRA_STORAGE_MAX_CARDS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYMIRA_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYMIRA_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYMIRA_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYMIRA_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYMIRA_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYMIRA_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYMIRA_REDIS_TLS_ENABLED")

	// ── Lifecycle ──
	setDuration(&cfg.Lifecycle.Interval, "POLYMIRA_LIFECYCLE_INTERVAL")
	setStr(&cfg.Lifecycle.Interpreter, "POLYMIRA_LIFECYCLE_INTERPRETER")
	setStringSlice(&cfg.Lifecycle.Scripts, "POLYMIRA_LIFECYCLE_SCRIPTS")

	// ── Git ──
	setBool(&cfg.Git.Enabled, "POLYMIRA_GIT_ENABLED")
	setStr(&cfg.Git.Token, "POLYMIRA_GIT_TOKEN")
	setStr(&cfg.Git.Token, "GITHUB_TOKEN") // compatibility alias
	setStr(&cfg.Git.RepoName, "POLYMIRA_GIT_REPO_NAME")
	setStr(&cfg.Git.CommitterName, "POLYMIRA_GIT_COMMITTER_NAME")
	setStr(&cfg.Git.CommitterEmail, "POLYMIRA_GIT_COMMITTER_EMAIL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "POLYMIRA_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYMIRA_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYMIRA_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYMIRA_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYMIRA_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYMIRA_S3_SECRET_KEY")
	setStr(&cfg.S3.Prefix, "POLYMIRA_S3_PREFIX")
	setBool(&cfg.S3.UseSSL, "POLYMIRA_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYMIRA_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYMIRA_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYMIRA_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYMIRA_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYMIRA_MODE")
	setStr(&cfg.LogLevel, "POLYMIRA_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
