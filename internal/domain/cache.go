package domain

import (
	"context"
	"time"
)

// RateLimiter enforces request budgets per key.
type RateLimiter interface {
	// Allow reports whether a request for key fits under limit requests per
	// window, counting the request when it does.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LeaderboardCache caches computed leaderboards per period.
type LeaderboardCache interface {
	// Get returns ErrNotFound on a cache miss.
	Get(ctx context.Context, period Period) (Leaderboard, error)
	Set(ctx context.Context, period Period, lb Leaderboard) error
}
