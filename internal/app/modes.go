package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kolyantrend/polymira/internal/lifecycle"
	"github.com/kolyantrend/polymira/internal/server"
	"github.com/kolyantrend/polymira/internal/server/handler"
	"github.com/kolyantrend/polymira/internal/server/ws"
	"github.com/kolyantrend/polymira/internal/service"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// ServeMode runs the web backend: WebSocket hub plus HTTP API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps)
	return waitGroup(g)
}

// LifecycleMode runs only the maintenance daemon.
func (a *App) LifecycleMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting lifecycle mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startLifecycle(ctx, g, deps)
	return waitGroup(g)
}

// FullMode runs the web backend and the lifecycle daemon in one process.
// Both sides touch the same JSON documents; the stores keep writes atomic
// per document but cross-document races remain possible.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps)
	a.startLifecycle(ctx, g, deps)
	return waitGroup(g)
}

// startServer adds the hub and HTTP server goroutines to the errgroup.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	forecastSvc := service.NewForecastService(deps.ForecastStore, deps.PurchaseStore, hub, a.logger)
	purchaseSvc := service.NewPurchaseService(deps.PurchaseStore, hub, a.logger)
	profileSvc := service.NewProfileService(deps.ProfileStore, a.logger)
	leaderboardSvc := service.NewLeaderboardService(
		deps.ForecastStore,
		deps.PurchaseStore,
		deps.ProfileStore,
		deps.LeaderboardCache,
		a.logger,
	)

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health:      handler.NewHealthHandler(a.logger),
		Forecasts:   handler.NewForecastHandler(forecastSvc, a.logger),
		Purchases:   handler.NewPurchaseHandler(purchaseSvc, a.logger),
		Profiles:    handler.NewProfileHandler(profileSvc, a.logger),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardSvc, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// startLifecycle adds the daemon goroutine to the errgroup.
func (a *App) startLifecycle(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	var sync lifecycle.Syncer
	if a.cfg.Git.Enabled {
		sync = lifecycle.NewGitSync(lifecycle.GitSyncConfig{
			Dir:             a.cfg.Storage.DataDir,
			Token:           a.cfg.Git.Token,
			RepoName:        a.cfg.Git.RepoName,
			CommitterName:   a.cfg.Git.CommitterName,
			CommitterEmail:  a.cfg.Git.CommitterEmail,
			RepoDescription: a.cfg.Git.RepoDescription,
			RepoHomepage:    a.cfg.Git.RepoHomepage,
		}, a.logger)
	}

	var snapshot lifecycle.Snapshotter
	if deps.Snapshots != nil {
		snapshot = deps.Snapshots
	}

	scripts := make([][]string, 0, len(a.cfg.Lifecycle.Scripts))
	for _, s := range a.cfg.Lifecycle.Scripts {
		scripts = append(scripts, []string{a.cfg.Lifecycle.Interpreter, s})
	}

	runner := lifecycle.NewRunner(lifecycle.RunnerConfig{
		Interval:      a.cfg.Lifecycle.Interval.Duration,
		Scripts:       scripts,
		Dir:           a.cfg.Storage.DataDir,
		SnapshotFiles: a.cfg.Storage.Documents(),
	}, sync, snapshot, deps.Notifier, a.logger)

	g.Go(func() error {
		return runner.Run(ctx)
	})
}

// waitGroup converts context cancellation into a clean exit.
func waitGroup(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
