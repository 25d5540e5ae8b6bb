package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kolyantrend/polymira/internal/domain"
)

const leaderboardTTL = time.Minute

// LeaderboardCache implements domain.LeaderboardCache as JSON blobs keyed by
// period. Computing a leaderboard walks every stored card and ledger entry,
// so a short TTL takes the hot path off the JSON documents.
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLeaderboardCache creates a LeaderboardCache backed by the given Client.
func NewLeaderboardCache(c *Client) *LeaderboardCache {
	return &LeaderboardCache{rdb: c.Underlying(), ttl: leaderboardTTL}
}

func leaderboardKey(period domain.Period) string {
	return "leaderboard:" + string(period)
}

// Get retrieves the cached leaderboard for a period. It returns
// domain.ErrNotFound when the entry is missing or expired.
func (c *LeaderboardCache) Get(ctx context.Context, period domain.Period) (domain.Leaderboard, error) {
	data, err := c.rdb.Get(ctx, leaderboardKey(period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Leaderboard{}, domain.ErrNotFound
		}
		return domain.Leaderboard{}, fmt.Errorf("redis: get leaderboard %s: %w", period, err)
	}

	var lb domain.Leaderboard
	if err := json.Unmarshal(data, &lb); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("redis: unmarshal leaderboard %s: %w", period, err)
	}
	return lb, nil
}

// Set stores the leaderboard for a period with the cache TTL.
func (c *LeaderboardCache) Set(ctx context.Context, period domain.Period, lb domain.Leaderboard) error {
	data, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("redis: marshal leaderboard %s: %w", period, err)
	}

	if err := c.rdb.Set(ctx, leaderboardKey(period), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set leaderboard %s: %w", period, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.LeaderboardCache = (*LeaderboardCache)(nil)
