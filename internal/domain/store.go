package domain

import "context"

// ForecastStore persists the forecast card collection. The collection is a
// single ordered document, newest first; every mutation rewrites it whole.
type ForecastStore interface {
	// Insert assigns id, createdAt, and empty interaction lists, places the
	// card at the head of the collection, and applies the retention policy.
	// The card is mutated in place.
	Insert(ctx context.Context, card *ForecastCard) error
	// Toggle adds the wallet to the card's like/share list, or removes it if
	// already present. It returns whether the entry was added. An unknown
	// card id returns ErrNotFound after persisting the unchanged document.
	Toggle(ctx context.Context, cardID, wallet string, kind InteractionKind) (added bool, err error)
	// List returns the full collection, newest first.
	List(ctx context.Context) ([]ForecastCard, error)
	// ExistsWithTitle reports whether any card has this exact title.
	ExistsWithTitle(ctx context.Context, title string) (bool, error)
	// LikedBy returns the ids of cards the wallet currently likes.
	LikedBy(ctx context.Context, wallet string) ([]string, error)
}

// PurchaseStore persists the append-only purchase ledger, keyed by wallet.
type PurchaseStore interface {
	// Record appends a purchase unless the wallet already holds one for the
	// card (in either the structured or legacy shape); duplicates succeed
	// without writing.
	Record(ctx context.Context, wallet, cardID string, tx *string) error
	// ListByWallet returns the wallet's ledger in insertion order.
	ListByWallet(ctx context.Context, wallet string) ([]PurchaseRecord, error)
	// All returns the whole ledger document.
	All(ctx context.Context) (map[string][]PurchaseRecord, error)
	// PurchasedIDs returns the set of card ids referenced by any wallet's
	// ledger, in either shape. Used by the retention policy.
	PurchasedIDs(ctx context.Context) (map[string]struct{}, error)
}

// ProfileStore persists the wallet → handle mapping. Handles are cleaned by
// the service layer before they reach the store.
type ProfileStore interface {
	Save(ctx context.Context, wallet, handle string) error
	// Get returns ErrNotFound for wallets without a profile.
	Get(ctx context.Context, wallet string) (string, error)
	All(ctx context.Context) (map[string]string, error)
}
