package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kolyantrend/polymira/internal/domain"
)

// PurchaseStore implements domain.PurchaseStore over a single JSON object
// document mapping wallet → ordered purchase list.
type PurchaseStore struct {
	mu     sync.Mutex
	path   string
	clock  func() time.Time
	logger *slog.Logger
}

// NewPurchaseStore creates a PurchaseStore over the document at path.
func NewPurchaseStore(path string, logger *slog.Logger) *PurchaseStore {
	return &PurchaseStore{
		path:   path,
		clock:  func() time.Time { return time.Now().UTC() },
		logger: logger.With(slog.String("component", "purchase_store")),
	}
}

func (s *PurchaseStore) load() map[string][]domain.PurchaseRecord {
	var ledger map[string][]domain.PurchaseRecord
	if !readDocument(s.logger, s.path, &ledger) || ledger == nil {
		return map[string][]domain.PurchaseRecord{}
	}
	return ledger
}

// Record appends a purchase for the wallet unless one already exists for the
// card. The duplicate check matches both structured records and legacy bare
// id strings, so re-buying a card unlocked years ago stays a no-op.
func (s *PurchaseStore) Record(ctx context.Context, wallet, cardID string, tx *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.load()

	for _, rec := range ledger[wallet] {
		if rec.ID == cardID {
			return nil
		}
	}

	ledger[wallet] = append(ledger[wallet], domain.PurchaseRecord{
		ID:   cardID,
		Time: domain.FormatTimestamp(s.clock()),
		Tx:   tx,
	})

	if err := writeDocument(s.path, ledger); err != nil {
		return fmt.Errorf("jsonfile: save purchases: %w", err)
	}
	return nil
}

// ListByWallet returns the wallet's ledger in insertion order.
func (s *PurchaseStore) ListByWallet(ctx context.Context, wallet string) ([]domain.PurchaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[wallet], nil
}

// All returns the whole ledger document.
func (s *PurchaseStore) All(ctx context.Context) (map[string][]domain.PurchaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// PurchasedIDs returns the set of card ids any wallet has unlocked.
func (s *PurchaseStore) PurchasedIDs(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{})
	for _, records := range s.load() {
		for _, rec := range records {
			ids[rec.ID] = struct{}{}
		}
	}
	return ids, nil
}

// Compile-time interface check.
var _ domain.PurchaseStore = (*PurchaseStore)(nil)
