package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kolyantrend/polymira/internal/domain"
)

// LeaderboardService defines the methods the stats handler requires.
type LeaderboardService interface {
	Compute(ctx context.Context, period domain.Period) (domain.Leaderboard, error)
}

// LeaderboardHandler serves the stats endpoint.
type LeaderboardHandler struct {
	leaderboard LeaderboardService
	logger      *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(leaderboard LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		logger:      logHandler(logger, "leaderboard"),
	}
}

// Stats returns the top buyers, likers, and sharers for a time period.
// GET /api/stats/{period}
func (h *LeaderboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(pathParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "period must be one of all, day, week, month")
		return
	}

	lb, err := h.leaderboard.Compute(r.Context(), period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "leaderboard failed",
			slog.String("period", string(period)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, lb)
}
