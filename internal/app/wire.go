package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	s3blob "github.com/kolyantrend/polymira/internal/blob/s3"
	"github.com/kolyantrend/polymira/internal/cache/redis"
	"github.com/kolyantrend/polymira/internal/config"
	"github.com/kolyantrend/polymira/internal/domain"
	"github.com/kolyantrend/polymira/internal/notify"
	"github.com/kolyantrend/polymira/internal/store/jsonfile"
)

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Stores
	ForecastStore domain.ForecastStore
	PurchaseStore domain.PurchaseStore
	ProfileStore  domain.ProfileStore

	// Redis-backed extras; nil when Redis is disabled.
	RateLimiter      domain.RateLimiter
	LeaderboardCache domain.LeaderboardCache

	// Snapshots; nil when S3 is disabled.
	Snapshots *s3blob.SnapshotUploader

	// Notifications
	Notifier *notify.Notifier
}

// needsS3 reports whether the mode runs the lifecycle daemon and can use
// object storage snapshots.
func needsS3(mode string) bool {
	switch mode {
	case "lifecycle", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- JSON document stores ---
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("wire: create data dir: %w", err)
	}

	purchases := jsonfile.NewPurchaseStore(cfg.Storage.PurchasesPath(), logger)
	deps.PurchaseStore = purchases
	deps.ForecastStore = jsonfile.NewForecastStore(cfg.Storage.ForecastsPath(), cfg.Storage.MaxCards, purchases, logger)
	deps.ProfileStore = jsonfile.NewProfileStore(cfg.Storage.ProfilesPath(), logger)

	// --- Redis (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.LeaderboardCache = redis.NewLeaderboardCache(redisClient)
	}

	// --- S3 snapshots (optional, lifecycle modes only) ---
	if cfg.S3.Enabled && needsS3(cfg.Mode) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Snapshots = s3blob.NewSnapshotUploader(s3Client, cfg.S3.Prefix)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
