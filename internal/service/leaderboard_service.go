package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kolyantrend/polymira/internal/domain"
)

// topN is how many wallets each leaderboard category keeps.
const topN = 10

// LeaderboardService ranks top buyers, likers, and sharers over a lookback
// window, joining in social handles from the profile store.
type LeaderboardService struct {
	forecasts domain.ForecastStore
	purchases domain.PurchaseStore
	profiles  domain.ProfileStore
	cache     domain.LeaderboardCache
	clock     func() time.Time
	logger    *slog.Logger
}

// NewLeaderboardService creates a LeaderboardService. cache may be nil; the
// leaderboard is then recomputed on every request.
func NewLeaderboardService(
	forecasts domain.ForecastStore,
	purchases domain.PurchaseStore,
	profiles domain.ProfileStore,
	cache domain.LeaderboardCache,
	logger *slog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		forecasts: forecasts,
		purchases: purchases,
		profiles:  profiles,
		cache:     cache,
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "leaderboard_service")),
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *LeaderboardService) WithClock(fn func() time.Time) *LeaderboardService {
	s.clock = fn
	return s
}

// Compute builds the leaderboard for the period. The window test is
// timestamp >= now - window; the unbounded "all" period counts everything,
// including legacy purchase entries that carry no timestamp. Malformed
// timestamps are excluded from every window and logged, never fatal.
func (s *LeaderboardService) Compute(ctx context.Context, period domain.Period) (domain.Leaderboard, error) {
	if s.cache != nil {
		if lb, err := s.cache.Get(ctx, period); err == nil {
			return lb, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "leaderboard cache read failed",
				slog.String("period", string(period)),
				slog.String("error", err.Error()),
			)
		}
	}

	window, bounded := period.Window()
	cutoff := s.clock().Add(-window)

	buys := map[string]int{}
	likes := map[string]int{}
	shares := map[string]int{}

	ledger, err := s.purchases.All(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard: load purchases: %w", err)
	}
	for wallet, records := range ledger {
		for _, rec := range records {
			if rec.Legacy {
				// No timestamp to test against; counts only when unbounded.
				if !bounded {
					buys[wallet]++
				}
				continue
			}
			if s.inWindow(ctx, rec.Time, cutoff, bounded) {
				buys[wallet]++
			}
		}
	}

	cards, err := s.forecasts.List(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard: load forecasts: %w", err)
	}
	for _, card := range cards {
		for _, entry := range card.Likes {
			if s.inWindow(ctx, entry.Time, cutoff, bounded) {
				likes[entry.Wallet]++
			}
		}
		for _, entry := range card.Shares {
			if s.inWindow(ctx, entry.Time, cutoff, bounded) {
				shares[entry.Wallet]++
			}
		}
	}

	handles, err := s.profiles.All(ctx)
	if err != nil {
		// Ranking still works without handles; degrade rather than fail.
		s.logger.WarnContext(ctx, "leaderboard: profiles unavailable",
			slog.String("error", err.Error()),
		)
		handles = map[string]string{}
	}

	lb := domain.Leaderboard{
		Buyers:  rank(buys, handles),
		Likers:  rank(likes, handles),
		Sharers: rank(shares, handles),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, period, lb); err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache write failed",
				slog.String("period", string(period)),
				slog.String("error", err.Error()),
			)
		}
	}
	return lb, nil
}

// inWindow tests a stored timestamp against the cutoff. Malformed timestamps
// fail closed: excluded, logged as a data-quality problem.
func (s *LeaderboardService) inWindow(ctx context.Context, raw string, cutoff time.Time, bounded bool) bool {
	t, err := domain.ParseTimestamp(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "leaderboard: malformed timestamp excluded",
			slog.String("value", raw),
		)
		return false
	}
	if !bounded {
		return true
	}
	return !t.Before(cutoff)
}

// rank turns a wallet → count map into the top-10 entries, count descending.
// Ties break on wallet ascending so the ordering is deterministic. Wallets
// with zero qualifying interactions never appear.
func rank(counts map[string]int, handles map[string]string) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(counts))
	for wallet, count := range counts {
		entry := domain.LeaderboardEntry{Wallet: wallet, Count: count}
		if h, ok := handles[wallet]; ok {
			handle := h
			entry.Handle = &handle
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Wallet < entries[j].Wallet
	})

	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
