package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolyantrend/polymira/internal/domain"
)

// recordingPublisher captures published activity events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (p *recordingPublisher) Publish(event domain.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func TestForecastService_SubmitAndFeed(t *testing.T) {
	forecasts, purchases, _ := seedStores(t)
	pub := &recordingPublisher{}
	svc := NewForecastService(forecasts, purchases, pub, testLogger())
	ctx := context.Background()

	card := domain.ForecastCard{Title: "Will BTC hit 100k?"}
	require.NoError(t, svc.SubmitCard(ctx, &card))
	assert.Len(t, card.ID, 10)
	assert.Equal(t, []string{domain.EventCardCreated}, pub.types())

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3) // two seeded cards plus the new one
	assert.Equal(t, card.ID, feed[0].ForecastCard.ID)

	// The new card's display date is a real formatted date, the seeded
	// cards' valid RFC 3339 times format too.
	assert.NotEqual(t, "Just now", feed[0].CreatedDisplay)
	assert.Regexp(t, `^\d{2} [A-Z][a-z]{2}, \d{2}:\d{2}$`, feed[0].CreatedDisplay)
}

func TestForecastService_SubmitDuplicateTitle(t *testing.T) {
	forecasts, purchases, _ := seedStores(t)
	svc := NewForecastService(forecasts, purchases, nil, testLogger())
	ctx := context.Background()

	dup := domain.ForecastCard{Title: "card one"} // seeded title
	err := svc.SubmitCard(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestForecastService_FeedFallbackDate(t *testing.T) {
	forecasts, purchases, _ := seedStores(t)
	svc := NewForecastService(forecasts, purchases, nil, testLogger())
	ctx := context.Background()

	// Corrupt one card's createdAt via a direct toggle-free path: seed data
	// is valid, so submit a card and then verify the fallback with a
	// hand-built FeedCard marshal instead.
	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	for _, f := range feed {
		assert.NotEmpty(t, f.CreatedDisplay)
	}

	fc := FeedCard{
		ForecastCard:   domain.ForecastCard{ID: "x", Title: "t", CreatedAt: "???"},
		CreatedDisplay: "Just now",
	}
	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, "Just now", obj["created_at"])
	assert.Equal(t, "???", obj["createdAt"])
}

func TestForecastService_ToggleUnknownCardIsSilent(t *testing.T) {
	forecasts, purchases, _ := seedStores(t)
	pub := &recordingPublisher{}
	svc := NewForecastService(forecasts, purchases, pub, testLogger())

	err := svc.ToggleInteraction(context.Background(), "xyz123", "abc", domain.KindLike)
	assert.NoError(t, err)
	assert.Empty(t, pub.types())
}

func TestForecastService_ToggleEvents(t *testing.T) {
	forecasts, purchases, _ := seedStores(t)
	pub := &recordingPublisher{}
	svc := NewForecastService(forecasts, purchases, pub, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.ToggleInteraction(ctx, "c1", "w9", domain.KindLike))
	require.NoError(t, svc.ToggleInteraction(ctx, "c1", "w9", domain.KindLike))
	require.NoError(t, svc.ToggleInteraction(ctx, "c1", "w9", domain.KindShare))

	assert.Equal(t, []string{domain.EventLike, domain.EventUnlike, domain.EventShare}, pub.types())
}

func TestForecastService_UserState(t *testing.T) {
	forecasts, purchases, _ := seedStores(t)
	svc := NewForecastService(forecasts, purchases, nil, testLogger())
	ctx := context.Background()

	// bob holds one structured purchase (c4) and one legacy entry; only the
	// structured record is reported as unlocked. He likes c1.
	state, err := svc.UserState(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"c4"}, state.Unlocked)
	assert.Equal(t, []string{"c1"}, state.Liked)

	// Unknown wallet: empty lists, not nulls.
	state, err = svc.UserState(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, state.Unlocked)
	assert.NotNil(t, state.Liked)
	assert.Empty(t, state.Unlocked)
	assert.Empty(t, state.Liked)
}
