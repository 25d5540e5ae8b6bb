package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolyantrend/polymira/internal/domain"
)

func TestPurchaseService_RecordAndEvent(t *testing.T) {
	_, purchases, _ := seedStores(t)
	pub := &recordingPublisher{}
	svc := NewPurchaseService(purchases, pub, testLogger())
	ctx := context.Background()

	sig := "5xTxSig"
	require.NoError(t, svc.RecordPurchase(ctx, "w1", "c9", &sig))

	records, err := purchases.ListByWallet(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c9", records[0].ID)
	require.NotNil(t, records[0].Tx)
	assert.Equal(t, sig, *records[0].Tx)

	assert.Equal(t, []string{domain.EventUnlock}, pub.types())
}

func TestPurchaseService_RepeatBuyIsIdempotent(t *testing.T) {
	_, purchases, _ := seedStores(t)
	svc := NewPurchaseService(purchases, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.RecordPurchase(ctx, "w1", "c9", nil))
	require.NoError(t, svc.RecordPurchase(ctx, "w1", "c9", nil))

	records, err := purchases.ListByWallet(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
