// Package server assembles the HTTP API: routes, middleware, and the
// WebSocket activity endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kolyantrend/polymira/internal/domain"
	"github.com/kolyantrend/polymira/internal/server/handler"
	"github.com/kolyantrend/polymira/internal/server/middleware"
	"github.com/kolyantrend/polymira/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health      *handler.HealthHandler
	Forecasts   *handler.ForecastHandler
	Purchases   *handler.PurchaseHandler
	Profiles    *handler.ProfileHandler
	Leaderboard *handler.LeaderboardHandler
}

// Server is the marketplace HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. limiter may be nil,
// which disables rate limiting entirely.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Per-route budgets sit inside the default API-wide budget.
	apiLimit := middleware.RateLimit(limiter, "api", 100, time.Hour)
	buyLimit := middleware.RateLimit(limiter, "buy", 5, time.Minute)
	interactLimit := middleware.RateLimit(limiter, "interact", 10, time.Minute)
	profileLimit := middleware.RateLimit(limiter, "profile", 3, time.Hour)

	// Health check carries no rate limit.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.Handle("GET /api/feed", apiLimit(http.HandlerFunc(handlers.Forecasts.Feed)))
	mux.Handle("POST /api/forecasts", apiLimit(http.HandlerFunc(handlers.Forecasts.SubmitCard)))
	mux.Handle("GET /api/user_state/{wallet}", apiLimit(http.HandlerFunc(handlers.Forecasts.UserState)))
	mux.Handle("GET /api/stats/{period}", apiLimit(http.HandlerFunc(handlers.Leaderboard.Stats)))

	mux.Handle("POST /api/buy", buyLimit(http.HandlerFunc(handlers.Purchases.Buy)))

	mux.Handle("POST /api/like", interactLimit(handlers.Forecasts.Toggle(domain.KindLike)))
	mux.Handle("POST /api/share", interactLimit(handlers.Forecasts.Toggle(domain.KindShare)))

	mux.Handle("POST /api/profile", profileLimit(http.HandlerFunc(handlers.Profiles.Save)))
	mux.Handle("GET /api/profile/{wallet}", apiLimit(http.HandlerFunc(handlers.Profiles.Get)))

	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Middleware chain, outermost first: CORS, then request logging.
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
