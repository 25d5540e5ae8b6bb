package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolyantrend/polymira/internal/domain"
)

func TestCleanHandle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "alice", want: "alice"},
		{raw: "@alice", want: "alice"},
		{raw: "https://x.com/@alice", want: "alice"},
		{raw: "https://x.com/alice", want: "alice"},
		{raw: "https://twitter.com/alice", want: "alice"},
		{raw: "  @alice  ", want: "alice"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHandle(tt.raw))
		})
	}
}

func TestProfileService_SaveAndGet(t *testing.T) {
	_, _, profiles := seedStores(t)
	svc := NewProfileService(profiles, testLogger())
	ctx := context.Background()

	handle, err := svc.SaveProfile(ctx, "w1", "https://x.com/@new_user")
	require.NoError(t, err)
	assert.Equal(t, "new_user", handle)

	got, err := svc.GetProfile(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "new_user", got)

	// Saving again replaces the handle.
	_, err = svc.SaveProfile(ctx, "w1", "other")
	require.NoError(t, err)
	got, err = svc.GetProfile(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}

func TestProfileService_GetUnknown(t *testing.T) {
	_, _, profiles := seedStores(t)
	svc := NewProfileService(profiles, testLogger())

	_, err := svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
