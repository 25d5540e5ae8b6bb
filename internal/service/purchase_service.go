package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kolyantrend/polymira/internal/domain"
)

// PurchaseService records card unlocks.
type PurchaseService struct {
	purchases domain.PurchaseStore
	activity  domain.ActivityPublisher
	clock     func() time.Time
	logger    *slog.Logger
}

// NewPurchaseService creates a PurchaseService. activity may be nil.
func NewPurchaseService(purchases domain.PurchaseStore, activity domain.ActivityPublisher, logger *slog.Logger) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		activity:  activity,
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "purchase_service")),
	}
}

// RecordPurchase appends an unlock to the wallet's ledger. Buying a card the
// wallet already holds succeeds without a second entry.
func (s *PurchaseService) RecordPurchase(ctx context.Context, wallet, cardID string, tx *string) error {
	if err := s.purchases.Record(ctx, wallet, cardID, tx); err != nil {
		return fmt.Errorf("purchase_service: record: %w", err)
	}

	if tx != nil && *tx != "" {
		s.logger.InfoContext(ctx, "on-chain purchase recorded",
			slog.String("wallet", wallet),
			slog.String("card_id", cardID),
			slog.String("explorer", "https://solscan.io/tx/"+*tx+"?cluster=devnet"),
		)
	}

	if s.activity != nil {
		s.activity.Publish(domain.ActivityEvent{
			Type:   domain.EventUnlock,
			CardID: cardID,
			Wallet: wallet,
			Time:   domain.FormatTimestamp(s.clock()),
		})
	}
	return nil
}
