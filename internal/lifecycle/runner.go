// Package lifecycle implements the unattended maintenance daemon: it
// periodically runs the analysis scripts, backs the data directory up to a
// GitHub remote, and optionally snapshots the documents to object storage.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// DefaultInterval is how long the daemon sleeps between cycles.
const DefaultInterval = 5 * time.Hour

// Syncer pushes the data directory to its backup remote.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Snapshotter uploads the given files to object storage under a timestamped
// prefix and returns that prefix.
type Snapshotter interface {
	Upload(ctx context.Context, files []string, now time.Time) (string, error)
}

// Alerter notifies operators about daemon failures.
type Alerter interface {
	Alert(ctx context.Context, title, message string) error
}

// RunnerConfig configures the daemon loop.
type RunnerConfig struct {
	// Interval between cycles. Zero means DefaultInterval.
	Interval time.Duration

	// Scripts are the external commands run at the start of each cycle,
	// in order. Each entry is a full argv, e.g. ["python3", "scanner.py"].
	Scripts [][]string

	// Dir is the working directory for the scripts.
	Dir string

	// SnapshotFiles are the documents uploaded after a successful sync.
	SnapshotFiles []string
}

// Runner drives the lifecycle loop. Script and sync failures are logged and
// alerted, never fatal; the loop only exits with the context.
type Runner struct {
	cfg      RunnerConfig
	sync     Syncer
	snapshot Snapshotter
	alerts   Alerter
	clock    func() time.Time
	logger   *slog.Logger
}

// NewRunner creates a Runner. sync, snapshot, and alerts may each be nil to
// disable that part of the cycle.
func NewRunner(cfg RunnerConfig, sync Syncer, snapshot Snapshotter, alerts Alerter, logger *slog.Logger) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Runner{
		cfg:      cfg,
		sync:     sync,
		snapshot: snapshot,
		alerts:   alerts,
		clock:    func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "lifecycle")),
	}
}

// WithClock overrides the runner clock. Used by tests.
func (r *Runner) WithClock(fn func() time.Time) *Runner {
	r.clock = fn
	return r
}

// Run executes cycles until the context is cancelled. The first cycle starts
// immediately.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "lifecycle started",
		slog.Duration("interval", r.cfg.Interval),
		slog.Int("scripts", len(r.cfg.Scripts)),
	)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		r.Cycle(ctx)

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "lifecycle stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle runs one full pass: scripts, git sync, snapshot.
func (r *Runner) Cycle(ctx context.Context) {
	for _, argv := range r.cfg.Scripts {
		if err := r.runScript(ctx, argv); err != nil {
			r.logger.ErrorContext(ctx, "script failed",
				slog.Any("argv", argv),
				slog.String("error", err.Error()),
			)
			r.alert(ctx, "Lifecycle script failed", err.Error())
		}
	}

	if r.sync != nil {
		if err := r.sync.Sync(ctx); err != nil {
			r.logger.ErrorContext(ctx, "git sync failed", slog.String("error", err.Error()))
			r.alert(ctx, "Data backup failed", err.Error())
			return
		}
	}

	if r.snapshot != nil && len(r.cfg.SnapshotFiles) > 0 {
		prefix, err := r.snapshot.Upload(ctx, r.cfg.SnapshotFiles, r.clock())
		if err != nil {
			r.logger.ErrorContext(ctx, "snapshot failed", slog.String("error", err.Error()))
			r.alert(ctx, "Snapshot upload failed", err.Error())
			return
		}
		r.logger.InfoContext(ctx, "snapshot uploaded", slog.String("prefix", prefix))
	}
}

// runScript executes one external command, streaming its output to the
// daemon's stdout and stderr.
func (r *Runner) runScript(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("lifecycle: empty script argv")
	}

	r.logger.InfoContext(ctx, "running script", slog.Any("argv", argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.cfg.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("lifecycle: run %s: %w", argv[0], err)
	}

	r.logger.InfoContext(ctx, "script finished", slog.Any("argv", argv))
	return nil
}

func (r *Runner) alert(ctx context.Context, title, message string) {
	if r.alerts == nil {
		return
	}
	if err := r.alerts.Alert(ctx, title, message); err != nil {
		r.logger.WarnContext(ctx, "alert delivery failed", slog.String("error", err.Error()))
	}
}
