package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kolyantrend/polymira/internal/domain"
	"github.com/kolyantrend/polymira/internal/idhash"
)

// DefaultMaxEntries caps the forecast collection size.
const DefaultMaxEntries = 500

// ForecastStore implements domain.ForecastStore over a single JSON array
// document, newest card first.
type ForecastStore struct {
	mu        sync.Mutex
	path      string
	maxCards  int
	purchases domain.PurchaseStore
	clock     func() time.Time
	logger    *slog.Logger
}

// NewForecastStore creates a ForecastStore over the document at path. The
// purchase store is consulted by the retention policy so purchased cards are
// never evicted. maxCards <= 0 falls back to DefaultMaxEntries.
func NewForecastStore(path string, maxCards int, purchases domain.PurchaseStore, logger *slog.Logger) *ForecastStore {
	if maxCards <= 0 {
		maxCards = DefaultMaxEntries
	}
	return &ForecastStore{
		path:      path,
		maxCards:  maxCards,
		purchases: purchases,
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "forecast_store")),
	}
}

func (s *ForecastStore) load() []domain.ForecastCard {
	var cards []domain.ForecastCard
	if !readDocument(s.logger, s.path, &cards) || cards == nil {
		return []domain.ForecastCard{}
	}
	return cards
}

func (s *ForecastStore) save(cards []domain.ForecastCard) error {
	if err := writeDocument(s.path, cards); err != nil {
		return fmt.Errorf("jsonfile: save forecasts: %w", err)
	}
	return nil
}

// Insert assigns the card's id, creation time, and empty interaction lists,
// places it at the head of the collection, and evicts over-cap unpurchased
// cards from the tail.
func (s *ForecastStore) Insert(ctx context.Context, card *domain.ForecastCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card.ID = idhash.CardID(card.Title)
	card.CreatedAt = domain.FormatTimestamp(s.clock())
	card.Likes = []domain.Interaction{}
	card.Shares = []domain.Interaction{}

	cards := s.load()
	cards = append([]domain.ForecastCard{*card}, cards...)
	cards = s.evict(ctx, cards)

	return s.save(cards)
}

// evict walks backward from the tail down to the cap boundary, dropping any
// card not referenced by a purchase ledger. It is a single pass: purchased
// cards interspersed past the cap can leave the collection slightly over
// size. Best-effort capping, not a hard guarantee.
func (s *ForecastStore) evict(ctx context.Context, cards []domain.ForecastCard) []domain.ForecastCard {
	if len(cards) <= s.maxCards {
		return cards
	}

	bought, err := s.purchases.PurchasedIDs(ctx)
	if err != nil {
		// Without the ledger we cannot tell protected cards apart, so skip
		// eviction entirely rather than risk dropping a purchased card.
		s.logger.Error("retention: purchase ledger unavailable, skipping eviction",
			slog.String("error", err.Error()),
		)
		return cards
	}

	for i := len(cards) - 1; i >= s.maxCards; i-- {
		if _, ok := bought[cards[i].ID]; !ok {
			cards = append(cards[:i], cards[i+1:]...)
		}
	}
	return cards
}

// Toggle flips the wallet's membership on the card's like/share list. The
// document is persisted even when the card is unknown; that case returns
// ErrNotFound so the caller can decide whether to surface it.
func (s *ForecastStore) Toggle(ctx context.Context, cardID, wallet string, kind domain.InteractionKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := s.load()

	target := -1
	for i := range cards {
		if cards[i].ID == cardID {
			target = i
			break
		}
	}

	if target < 0 {
		if err := s.save(cards); err != nil {
			return false, err
		}
		return false, fmt.Errorf("jsonfile: toggle %s on card %s: %w", kind, cardID, domain.ErrNotFound)
	}

	card := &cards[target]
	list := card.Interactions(kind)

	added := true
	found := -1
	for i, entry := range list {
		if entry.Wallet == wallet {
			found = i
			break
		}
	}
	if found >= 0 {
		list = append(list[:found], list[found+1:]...)
		added = false
	} else {
		list = append(list, domain.Interaction{
			Wallet: wallet,
			Time:   domain.FormatTimestamp(s.clock()),
		})
	}
	card.SetInteractions(kind, list)

	if err := s.save(cards); err != nil {
		return false, err
	}
	return added, nil
}

// List returns the whole collection, newest first.
func (s *ForecastStore) List(ctx context.Context) ([]domain.ForecastCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// ExistsWithTitle reports an exact, case-sensitive title match.
func (s *ForecastStore) ExistsWithTitle(ctx context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range s.load() {
		if card.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// LikedBy returns the ids of cards whose like list contains the wallet.
func (s *ForecastStore) LikedBy(ctx context.Context, wallet string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, card := range s.load() {
		for _, like := range card.Likes {
			if like.Wallet == wallet {
				ids = append(ids, card.ID)
				break
			}
		}
	}
	return ids, nil
}

// Compile-time interface check.
var _ domain.ForecastStore = (*ForecastStore)(nil)
