package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kolyantrend/polymira/internal/domain"
)

// ProfileService defines the methods the profile handler requires.
type ProfileService interface {
	SaveProfile(ctx context.Context, wallet, rawHandle string) (string, error)
	GetProfile(ctx context.Context, wallet string) (string, error)
}

// ProfileHandler serves the wallet profile endpoints.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logHandler(logger, "profile"),
	}
}

// saveProfileRequest is the body of the profile save endpoint.
type saveProfileRequest struct {
	Wallet  string `json:"wallet"`
	XHandle string `json:"x_handle"`
}

// Save stores the wallet's social handle, replacing any previous one, and
// returns the cleaned handle.
// POST /api/profile
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Wallet == "" || req.XHandle == "" {
		writeError(w, http.StatusBadRequest, "missing wallet or x_handle")
		return
	}

	handle, err := h.profiles.SaveProfile(r.Context(), req.Wallet, req.XHandle)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "save profile failed",
			slog.String("wallet", req.Wallet),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "x": handle})
}

// Get returns the wallet's handle, null when none is set.
// GET /api/profile/{wallet}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "missing wallet")
		return
	}

	handle, err := h.profiles.GetProfile(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"x": nil})
			return
		}
		h.logger.ErrorContext(r.Context(), "get profile failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"x": handle})
}
