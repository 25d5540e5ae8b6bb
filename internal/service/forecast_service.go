// Package service implements the marketplace operations on top of the
// domain stores: the card feed, purchases, interactions, profiles, and the
// leaderboard.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kolyantrend/polymira/internal/domain"
)

// feedDateLayout renders card creation times for the feed, e.g. "10 Feb, 19:02".
const feedDateLayout = "02 Jan, 15:04"

// FeedCard is a forecast card augmented with the human-readable creation
// date the frontend shows.
type FeedCard struct {
	domain.ForecastCard
	CreatedDisplay string
}

// MarshalJSON emits the card object with the extra created_at display field.
func (f FeedCard) MarshalJSON() ([]byte, error) {
	data, err := f.ForecastCard.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	obj["created_at"] = f.CreatedDisplay
	return json.Marshal(obj)
}

// ForecastService handles the card feed, submissions, and interactions.
type ForecastService struct {
	forecasts domain.ForecastStore
	purchases domain.PurchaseStore
	activity  domain.ActivityPublisher
	clock     func() time.Time
	logger    *slog.Logger
}

// NewForecastService creates a ForecastService. activity may be nil when no
// websocket hub is attached.
func NewForecastService(
	forecasts domain.ForecastStore,
	purchases domain.PurchaseStore,
	activity domain.ActivityPublisher,
	logger *slog.Logger,
) *ForecastService {
	return &ForecastService{
		forecasts: forecasts,
		purchases: purchases,
		activity:  activity,
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "forecast_service")),
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *ForecastService) WithClock(fn func() time.Time) *ForecastService {
	s.clock = fn
	return s
}

// Feed returns the card collection newest first, each entry carrying the
// formatted creation date. Unparsable timestamps fall back to "Just now"
// rather than failing the feed.
func (s *ForecastService) Feed(ctx context.Context) ([]FeedCard, error) {
	cards, err := s.forecasts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("forecast_service: feed: %w", err)
	}

	feed := make([]FeedCard, 0, len(cards))
	for _, card := range cards {
		display := "Just now"
		if t, err := domain.ParseTimestamp(card.CreatedAt); err == nil {
			display = t.Format(feedDateLayout)
		}
		feed = append(feed, FeedCard{ForecastCard: card, CreatedDisplay: display})
	}
	return feed, nil
}

// SubmitCard stores a new author-submitted card. Duplicate titles are
// rejected with ErrAlreadyExists; the card is mutated with its assigned id
// and creation time on success.
func (s *ForecastService) SubmitCard(ctx context.Context, card *domain.ForecastCard) error {
	exists, err := s.forecasts.ExistsWithTitle(ctx, card.Title)
	if err != nil {
		return fmt.Errorf("forecast_service: duplicate check: %w", err)
	}
	if exists {
		return fmt.Errorf("forecast_service: title %q: %w", card.Title, domain.ErrAlreadyExists)
	}

	if err := s.forecasts.Insert(ctx, card); err != nil {
		return fmt.Errorf("forecast_service: insert: %w", err)
	}

	s.publish(domain.ActivityEvent{Type: domain.EventCardCreated, CardID: card.ID})

	s.logger.InfoContext(ctx, "card created",
		slog.String("card_id", card.ID),
		slog.String("title", card.Title),
	)
	return nil
}

// ToggleInteraction flips the wallet's like/share on a card. An unknown card
// id is swallowed after logging: the original backend silently ignored it
// and clients depend on the call succeeding.
func (s *ForecastService) ToggleInteraction(ctx context.Context, cardID, wallet string, kind domain.InteractionKind) error {
	added, err := s.forecasts.Toggle(ctx, cardID, wallet, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.DebugContext(ctx, "toggle on unknown card ignored",
				slog.String("card_id", cardID),
				slog.String("wallet", wallet),
				slog.String("kind", string(kind)),
			)
			return nil
		}
		return fmt.Errorf("forecast_service: toggle: %w", err)
	}

	s.publish(domain.ActivityEvent{
		Type:   eventForToggle(kind, added),
		CardID: cardID,
		Wallet: wallet,
	})
	return nil
}

// ExistsWithTitle reports whether a card with this exact title is stored.
func (s *ForecastService) ExistsWithTitle(ctx context.Context, title string) (bool, error) {
	return s.forecasts.ExistsWithTitle(ctx, title)
}

// UserState reports which cards the wallet has unlocked and likes. Unlocks
// list only structured ledger records, matching the original client
// contract; legacy bare-string entries predate the unlock UI.
func (s *ForecastService) UserState(ctx context.Context, wallet string) (domain.UserState, error) {
	records, err := s.purchases.ListByWallet(ctx, wallet)
	if err != nil {
		return domain.UserState{}, fmt.Errorf("forecast_service: user state: %w", err)
	}

	unlocked := []string{}
	for _, rec := range records {
		if !rec.Legacy {
			unlocked = append(unlocked, rec.ID)
		}
	}

	liked, err := s.forecasts.LikedBy(ctx, wallet)
	if err != nil {
		return domain.UserState{}, fmt.Errorf("forecast_service: user state: %w", err)
	}
	if liked == nil {
		liked = []string{}
	}

	return domain.UserState{Unlocked: unlocked, Liked: liked}, nil
}

func (s *ForecastService) publish(event domain.ActivityEvent) {
	if s.activity == nil {
		return
	}
	event.Time = domain.FormatTimestamp(s.clock())
	s.activity.Publish(event)
}

func eventForToggle(kind domain.InteractionKind, added bool) string {
	switch {
	case kind == domain.KindShare && added:
		return domain.EventShare
	case kind == domain.KindShare:
		return domain.EventUnshare
	case added:
		return domain.EventLike
	default:
		return domain.EventUnlike
	}
}
