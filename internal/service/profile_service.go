package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kolyantrend/polymira/internal/domain"
)

// handlePrefixes are the social-site URL shapes users paste instead of a
// bare handle.
var handlePrefixes = []string{
	"https://x.com/",
	"https://twitter.com/",
}

// ProfileService manages the wallet → social handle mapping.
type ProfileService struct {
	profiles domain.ProfileStore
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles domain.ProfileStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "profile_service")),
	}
}

// CleanHandle strips the "@" and known profile-URL prefixes from a raw
// handle and trims whitespace.
func CleanHandle(raw string) string {
	cleaned := strings.ReplaceAll(raw, "@", "")
	for _, prefix := range handlePrefixes {
		cleaned = strings.ReplaceAll(cleaned, prefix, "")
	}
	return strings.TrimSpace(cleaned)
}

// SaveProfile cleans and stores the handle for the wallet, replacing any
// previous one, and returns the cleaned handle.
func (s *ProfileService) SaveProfile(ctx context.Context, wallet, rawHandle string) (string, error) {
	handle := CleanHandle(rawHandle)
	if err := s.profiles.Save(ctx, wallet, handle); err != nil {
		return "", fmt.Errorf("profile_service: save: %w", err)
	}
	return handle, nil
}

// GetProfile returns the wallet's handle, or ErrNotFound.
func (s *ProfileService) GetProfile(ctx context.Context, wallet string) (string, error) {
	handle, err := s.profiles.Get(ctx, wallet)
	if err != nil {
		return "", fmt.Errorf("profile_service: get %q: %w", wallet, err)
	}
	return handle, nil
}
