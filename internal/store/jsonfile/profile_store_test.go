package jsonfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolyantrend/polymira/internal/domain"
)

func TestProfileStore_SaveAndGet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")
	store := NewProfileStore(path, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wallet1", "alice"))

	handle, err := store.Get(ctx, "wallet1")
	require.NoError(t, err)
	assert.Equal(t, "alice", handle)

	// Last write wins.
	require.NoError(t, store.Save(ctx, "wallet1", "alice_v2"))
	handle, err = store.Get(ctx, "wallet1")
	require.NoError(t, err)
	assert.Equal(t, "alice_v2", handle)

	// Round-trip through a fresh store over the same file.
	reopened := NewProfileStore(path, testLogger())
	all, err := reopened.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"wallet1": "alice_v2"}, all)
}

func TestProfileStore_GetUnknownWallet(t *testing.T) {
	store := NewProfileStore(filepath.Join(t.TempDir(), "profiles.json"), testLogger())

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
