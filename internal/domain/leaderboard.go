package domain

import "time"

// Period is a leaderboard lookback window.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates an API-facing period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodAll, PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Window returns the lookback duration for the period. The second return is
// false for the unbounded "all" period.
func (p Period) Window() (time.Duration, bool) {
	switch p {
	case PeriodDay:
		return 24 * time.Hour, true
	case PeriodWeek:
		return 7 * 24 * time.Hour, true
	case PeriodMonth:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// LeaderboardEntry is one ranked wallet. Handle is the wallet's social
// handle, or null when the wallet has no profile.
type LeaderboardEntry struct {
	Wallet string  `json:"wallet"`
	Count  int     `json:"count"`
	Handle *string `json:"x"`
}

// Leaderboard holds the three top-10 rankings for one period.
type Leaderboard struct {
	Buyers  []LeaderboardEntry `json:"buyers"`
	Likers  []LeaderboardEntry `json:"likers"`
	Sharers []LeaderboardEntry `json:"sharers"`
}

// UserState summarises one wallet's relationship to the card collection.
type UserState struct {
	Unlocked []string `json:"unlocked"`
	Liked    []string `json:"liked"`
}
