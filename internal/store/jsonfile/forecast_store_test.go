package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolyantrend/polymira/internal/domain"
)

func TestForecastStore_InsertFirstCard(t *testing.T) {
	forecasts, _ := newTestStores(t, 0)
	ctx := context.Background()

	card := domain.ForecastCard{Title: "Will BTC hit 100k?"}
	require.NoError(t, forecasts.Insert(ctx, &card))

	assert.Len(t, card.ID, 10)
	for _, r := range card.ID {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
	assert.Empty(t, card.Likes)
	assert.Empty(t, card.Shares)
	assert.NotEmpty(t, card.CreatedAt)

	list, err := forecasts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, card.ID, list[0].ID)
	assert.Equal(t, "Will BTC hit 100k?", list[0].Title)
}

func TestForecastStore_InsertNewestFirst(t *testing.T) {
	forecasts, _ := newTestStores(t, 0)
	ctx := context.Background()

	first := domain.ForecastCard{Title: "first"}
	second := domain.ForecastCard{Title: "second"}
	require.NoError(t, forecasts.Insert(ctx, &first))
	require.NoError(t, forecasts.Insert(ctx, &second))

	list, err := forecasts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
}

func TestForecastStore_ExtraFieldsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	logger := testLogger()
	purchases := NewPurchaseStore(filepath.Join(dir, "purchases.json"), logger)
	path := filepath.Join(dir, "forecasts.json")
	forecasts := NewForecastStore(path, 0, purchases, logger)
	ctx := context.Background()

	card := domain.ForecastCard{
		Title: "Will SOL flip ETH?",
		Extra: map[string]any{
			"confidence": 0.72,
			"category":   "crypto",
			"tags":       []any{"sol", "eth"},
		},
	}
	require.NoError(t, forecasts.Insert(ctx, &card))

	// A fresh store over the same file must reproduce the card field for
	// field, extras included.
	reopened := NewForecastStore(path, 0, purchases, logger)
	list, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, card.ID, list[0].ID)
	assert.Equal(t, card.Title, list[0].Title)
	assert.Equal(t, card.CreatedAt, list[0].CreatedAt)
	assert.Equal(t, 0.72, list[0].Extra["confidence"])
	assert.Equal(t, "crypto", list[0].Extra["category"])
	assert.Equal(t, []any{"sol", "eth"}, list[0].Extra["tags"])
}

func TestForecastStore_ToggleAddsAndRemoves(t *testing.T) {
	tests := []struct {
		name string
		kind domain.InteractionKind
	}{
		{name: "like", kind: domain.KindLike},
		{name: "share", kind: domain.KindShare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecasts, _ := newTestStores(t, 0)
			ctx := context.Background()

			card := domain.ForecastCard{Title: "toggle target"}
			require.NoError(t, forecasts.Insert(ctx, &card))

			added, err := forecasts.Toggle(ctx, card.ID, "wallet-a", tt.kind)
			require.NoError(t, err)
			assert.True(t, added)

			list, _ := forecasts.List(ctx)
			require.Len(t, list[0].Interactions(tt.kind), 1)
			assert.Equal(t, "wallet-a", list[0].Interactions(tt.kind)[0].Wallet)

			// Double-toggle restores the original membership state.
			added, err = forecasts.Toggle(ctx, card.ID, "wallet-a", tt.kind)
			require.NoError(t, err)
			assert.False(t, added)

			list, _ = forecasts.List(ctx)
			assert.Empty(t, list[0].Interactions(tt.kind))
		})
	}
}

func TestForecastStore_ToggleOnePerWallet(t *testing.T) {
	forecasts, _ := newTestStores(t, 0)
	ctx := context.Background()

	card := domain.ForecastCard{Title: "popular"}
	require.NoError(t, forecasts.Insert(ctx, &card))

	for _, w := range []string{"a", "b", "a", "c", "a"} {
		_, err := forecasts.Toggle(ctx, card.ID, w, domain.KindLike)
		require.NoError(t, err)
	}

	// a toggled 3x -> present once; b, c once each.
	list, _ := forecasts.List(ctx)
	likes := list[0].Likes
	require.Len(t, likes, 3)
	seen := map[string]int{}
	for _, l := range likes {
		seen[l.Wallet]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
}

func TestForecastStore_ToggleUnknownCard(t *testing.T) {
	forecasts, _ := newTestStores(t, 0)
	ctx := context.Background()

	card := domain.ForecastCard{Title: "only card"}
	require.NoError(t, forecasts.Insert(ctx, &card))

	_, err := forecasts.Toggle(ctx, "xyz123", "abc", domain.KindLike)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// No persisted change to any card.
	list, _ := forecasts.List(ctx)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Likes)
	assert.Empty(t, list[0].Shares)
}

func TestForecastStore_RetentionEvictsUnpurchasedTail(t *testing.T) {
	const limit = 5
	forecasts, _ := newTestStores(t, limit)
	ctx := context.Background()

	for i := 0; i < limit; i++ {
		card := domain.ForecastCard{Title: fmt.Sprintf("card %d", i)}
		require.NoError(t, forecasts.Insert(ctx, &card))
	}

	// At the cap with nothing purchased: one more insert evicts exactly the
	// oldest card and the collection returns to the cap length.
	extra := domain.ForecastCard{Title: "one over"}
	require.NoError(t, forecasts.Insert(ctx, &extra))

	list, err := forecasts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, limit)
	assert.Equal(t, "one over", list[0].Title)
	for _, c := range list {
		assert.NotEqual(t, "card 0", c.Title)
	}
}

func TestForecastStore_RetentionProtectsPurchased(t *testing.T) {
	const limit = 3
	forecasts, purchases := newTestStores(t, limit)
	ctx := context.Background()

	oldest := domain.ForecastCard{Title: "bought long ago"}
	require.NoError(t, forecasts.Insert(ctx, &oldest))
	require.NoError(t, purchases.Record(ctx, "whale", oldest.ID, nil))

	for i := 0; i < limit; i++ {
		card := domain.ForecastCard{Title: fmt.Sprintf("filler %d", i)}
		require.NoError(t, forecasts.Insert(ctx, &card))
	}

	// The purchased card sits past the cap boundary but survives; the
	// collection stays one over the cap (best-effort capping).
	list, err := forecasts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, limit+1)
	assert.Equal(t, "bought long ago", list[len(list)-1].Title)
}

func TestForecastStore_ExistsWithTitle(t *testing.T) {
	forecasts, _ := newTestStores(t, 0)
	ctx := context.Background()

	card := domain.ForecastCard{Title: "Exact Title"}
	require.NoError(t, forecasts.Insert(ctx, &card))

	exists, err := forecasts.ExistsWithTitle(ctx, "Exact Title")
	require.NoError(t, err)
	assert.True(t, exists)

	// Case-sensitive.
	exists, err = forecasts.ExistsWithTitle(ctx, "exact title")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestForecastStore_LikedBy(t *testing.T) {
	forecasts, _ := newTestStores(t, 0)
	ctx := context.Background()

	a := domain.ForecastCard{Title: "a"}
	b := domain.ForecastCard{Title: "b"}
	require.NoError(t, forecasts.Insert(ctx, &a))
	require.NoError(t, forecasts.Insert(ctx, &b))

	_, err := forecasts.Toggle(ctx, a.ID, "w1", domain.KindLike)
	require.NoError(t, err)
	_, err = forecasts.Toggle(ctx, b.ID, "w1", domain.KindShare)
	require.NoError(t, err)

	liked, err := forecasts.LikedBy(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, liked)
}

func TestForecastStore_UnparsableDocumentIsEmpty(t *testing.T) {
	dir := t.TempDir()
	logger := testLogger()
	path := filepath.Join(dir, "forecasts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	purchases := NewPurchaseStore(filepath.Join(dir, "purchases.json"), logger)
	forecasts := NewForecastStore(path, 0, purchases, logger)

	list, err := forecasts.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
