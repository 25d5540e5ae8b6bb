package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Sync(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeSnapshotter struct {
	calls int
	files []string
	err   error
}

func (f *fakeSnapshotter) Upload(ctx context.Context, files []string, now time.Time) (string, error) {
	f.calls++
	f.files = files
	return "snap/20260828T120000Z", f.err
}

type fakeAlerter struct {
	titles []string
}

func (f *fakeAlerter) Alert(ctx context.Context, title, message string) error {
	f.titles = append(f.titles, title)
	return nil
}

func TestRunner_CycleRunsScriptsThenSyncThenSnapshot(t *testing.T) {
	sync := &fakeSyncer{}
	snap := &fakeSnapshotter{}
	alerts := &fakeAlerter{}

	r := NewRunner(RunnerConfig{
		Scripts:       [][]string{{"true"}},
		Dir:           t.TempDir(),
		SnapshotFiles: []string{"forecasts.json", "purchases.json"},
	}, sync, snap, alerts, testLogger())

	r.Cycle(context.Background())

	assert.Equal(t, 1, sync.calls)
	assert.Equal(t, 1, snap.calls)
	assert.Equal(t, []string{"forecasts.json", "purchases.json"}, snap.files)
	assert.Empty(t, alerts.titles)
}

func TestRunner_ScriptFailureAlertsAndContinues(t *testing.T) {
	sync := &fakeSyncer{}
	alerts := &fakeAlerter{}

	r := NewRunner(RunnerConfig{
		Scripts: [][]string{{"false"}, {"true"}},
		Dir:     t.TempDir(),
	}, sync, nil, alerts, testLogger())

	r.Cycle(context.Background())

	// The failing script is reported but the sync still happens.
	assert.Equal(t, []string{"Lifecycle script failed"}, alerts.titles)
	assert.Equal(t, 1, sync.calls)
}

func TestRunner_SyncFailureSkipsSnapshot(t *testing.T) {
	sync := &fakeSyncer{err: errors.New("push rejected")}
	snap := &fakeSnapshotter{}
	alerts := &fakeAlerter{}

	r := NewRunner(RunnerConfig{
		Dir:           t.TempDir(),
		SnapshotFiles: []string{"forecasts.json"},
	}, sync, snap, alerts, testLogger())

	r.Cycle(context.Background())

	assert.Equal(t, 0, snap.calls)
	assert.Equal(t, []string{"Data backup failed"}, alerts.titles)
}

func TestRunner_RunStopsWithContext(t *testing.T) {
	r := NewRunner(RunnerConfig{Interval: time.Hour, Dir: t.TempDir()}, nil, nil, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_DefaultInterval(t *testing.T) {
	r := NewRunner(RunnerConfig{}, nil, nil, nil, testLogger())
	assert.Equal(t, DefaultInterval, r.cfg.Interval)
}
