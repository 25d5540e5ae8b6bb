package jsonfile

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStores wires a forecast store and its purchase ledger over fresh
// documents in a temp dir.
func newTestStores(t *testing.T, maxCards int) (*ForecastStore, *PurchaseStore) {
	t.Helper()

	dir := t.TempDir()
	logger := testLogger()
	purchases := NewPurchaseStore(filepath.Join(dir, "purchases.json"), logger)
	forecasts := NewForecastStore(filepath.Join(dir, "forecasts.json"), maxCards, purchases, logger)
	return forecasts, purchases
}
