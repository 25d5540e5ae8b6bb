package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseStore_RecordIsIdempotent(t *testing.T) {
	store := NewPurchaseStore(filepath.Join(t.TempDir(), "purchases.json"), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "abc", "c1", nil))
	require.NoError(t, store.Record(ctx, "abc", "c1", nil))

	records, err := store.ListByWallet(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c1", records[0].ID)
	assert.Nil(t, records[0].Tx)
	assert.NotEmpty(t, records[0].Time)
}

func TestPurchaseStore_RecordKeepsTx(t *testing.T) {
	store := NewPurchaseStore(filepath.Join(t.TempDir(), "purchases.json"), testLogger())
	ctx := context.Background()

	tx := "5sigDevnetXYZ"
	require.NoError(t, store.Record(ctx, "abc", "c1", &tx))

	records, err := store.ListByWallet(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Tx)
	assert.Equal(t, tx, *records[0].Tx)
}

func TestPurchaseStore_LegacyEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "purchases.json")

	// A document written by the original backend: one bare id string and one
	// structured record under the same wallet.
	seed := `{
    "abc": [
        "legacy1",
        {"id": "new1", "time": "2025-01-10T12:00:00Z", "tx": null}
    ]
}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := NewPurchaseStore(path, testLogger())
	ctx := context.Background()

	records, err := store.ListByWallet(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Legacy)
	assert.Equal(t, "legacy1", records[0].ID)
	assert.False(t, records[1].Legacy)

	// The duplicate check must match the legacy shape too.
	require.NoError(t, store.Record(ctx, "abc", "legacy1", nil))
	records, err = store.ListByWallet(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// A genuinely new purchase rewrites the document; the legacy entry must
	// round-trip as a bare string.
	require.NoError(t, store.Record(ctx, "abc", "new2", nil))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"legacy1"`)
	assert.NotContains(t, string(raw), `"id": "legacy1"`)
}

func TestPurchaseStore_PurchasedIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "purchases.json")
	seed := `{
    "w1": ["legacy1"],
    "w2": [{"id": "new1", "time": "2025-01-10T12:00:00Z", "tx": "sig"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := NewPurchaseStore(path, testLogger())
	ids, err := store.PurchasedIDs(context.Background())
	require.NoError(t, err)

	assert.Contains(t, ids, "legacy1")
	assert.Contains(t, ids, "new1")
	assert.Len(t, ids, 2)
}

func TestPurchaseStore_MissingDocumentIsEmpty(t *testing.T) {
	store := NewPurchaseStore(filepath.Join(t.TempDir(), "purchases.json"), testLogger())

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
