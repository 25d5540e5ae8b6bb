package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrRateLimited   = errors.New("rate limited")
	ErrInvalidKind   = errors.New("invalid interaction kind")
	ErrInvalidPeriod = errors.New("invalid leaderboard period")
)
