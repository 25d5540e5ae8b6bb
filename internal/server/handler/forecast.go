package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kolyantrend/polymira/internal/domain"
	"github.com/kolyantrend/polymira/internal/service"
)

// ForecastService defines the methods the forecast handler requires from the
// service layer.
type ForecastService interface {
	Feed(ctx context.Context) ([]service.FeedCard, error)
	SubmitCard(ctx context.Context, card *domain.ForecastCard) error
	ToggleInteraction(ctx context.Context, cardID, wallet string, kind domain.InteractionKind) error
	UserState(ctx context.Context, wallet string) (domain.UserState, error)
}

// ForecastHandler serves the card feed, submissions, interactions, and the
// per-wallet state endpoint.
type ForecastHandler struct {
	forecasts ForecastService
	logger    *slog.Logger
}

// NewForecastHandler creates a ForecastHandler.
func NewForecastHandler(forecasts ForecastService, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecasts: forecasts,
		logger:    logHandler(logger, "forecast"),
	}
}

// Feed returns every stored card, newest first.
// GET /api/feed
func (h *ForecastHandler) Feed(w http.ResponseWriter, r *http.Request) {
	cards, err := h.forecasts.Feed(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "feed failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// SubmitCard stores an author-submitted card. The body is the card object
// itself; unknown fields ride along as prediction data.
// POST /api/forecasts
func (h *ForecastHandler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	var card domain.ForecastCard
	if !decodeBody(w, r, &card) {
		return
	}
	if card.Title == "" {
		writeError(w, http.StatusBadRequest, "missing title")
		return
	}

	if err := h.forecasts.SubmitCard(r.Context(), &card); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "a card with this title already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "submit card failed",
			slog.String("title", card.Title),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store card")
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// interactionRequest is the body of the like and share endpoints.
type interactionRequest struct {
	Wallet string `json:"wallet"`
	CardID string `json:"card_id"`
}

// Toggle flips the caller's like or share on a card. The kind comes from the
// route, not the body.
// POST /api/like, POST /api/share
func (h *ForecastHandler) Toggle(kind domain.InteractionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req interactionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Wallet == "" || req.CardID == "" {
			writeError(w, http.StatusBadRequest, "missing wallet or card_id")
			return
		}

		if err := h.forecasts.ToggleInteraction(r.Context(), req.CardID, req.Wallet, kind); err != nil {
			h.logger.ErrorContext(r.Context(), "toggle failed",
				slog.String("card_id", req.CardID),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to record interaction")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// UserState reports the wallet's unlocked and liked card ids.
// GET /api/user_state/{wallet}
func (h *ForecastHandler) UserState(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "missing wallet")
		return
	}

	state, err := h.forecasts.UserState(r.Context(), wallet)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "user state failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load user state")
		return
	}

	writeJSON(w, http.StatusOK, state)
}
