package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kolyantrend/polymira/internal/domain"
)

// ProfileStore implements domain.ProfileStore over a single JSON object
// document mapping wallet → handle. Last write wins.
type ProfileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewProfileStore creates a ProfileStore over the document at path.
func NewProfileStore(path string, logger *slog.Logger) *ProfileStore {
	return &ProfileStore{
		path:   path,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

func (s *ProfileStore) load() map[string]string {
	var profiles map[string]string
	if !readDocument(s.logger, s.path, &profiles) || profiles == nil {
		return map[string]string{}
	}
	return profiles
}

// Save stores the handle for the wallet, replacing any previous one.
func (s *ProfileStore) Save(ctx context.Context, wallet, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.load()
	profiles[wallet] = handle

	if err := writeDocument(s.path, profiles); err != nil {
		return fmt.Errorf("jsonfile: save profiles: %w", err)
	}
	return nil
}

// Get returns the wallet's handle, or ErrNotFound.
func (s *ProfileStore) Get(ctx context.Context, wallet string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.load()[wallet]
	if !ok {
		return "", domain.ErrNotFound
	}
	return handle, nil
}

// All returns the whole mapping.
func (s *ProfileStore) All(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// Compile-time interface check.
var _ domain.ProfileStore = (*ProfileStore)(nil)
