package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// PurchaseService defines the methods the purchase handler requires.
type PurchaseService interface {
	RecordPurchase(ctx context.Context, wallet, cardID string, tx *string) error
}

// PurchaseHandler serves the card unlock endpoint.
type PurchaseHandler struct {
	purchases PurchaseService
	logger    *slog.Logger
}

// NewPurchaseHandler creates a PurchaseHandler.
func NewPurchaseHandler(purchases PurchaseService, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		logger:    logHandler(logger, "purchase"),
	}
}

// buyRequest is the body of the buy endpoint. tx is the optional on-chain
// transaction signature.
type buyRequest struct {
	Wallet string  `json:"wallet"`
	CardID string  `json:"card_id"`
	Tx     *string `json:"tx"`
}

// Buy records a card unlock for the wallet. Buying a card the wallet already
// holds succeeds without effect.
// POST /api/buy
func (h *PurchaseHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Wallet == "" || req.CardID == "" {
		writeError(w, http.StatusBadRequest, "missing wallet or card_id")
		return
	}

	if err := h.purchases.RecordPurchase(r.Context(), req.Wallet, req.CardID, req.Tx); err != nil {
		h.logger.ErrorContext(r.Context(), "record purchase failed",
			slog.String("wallet", req.Wallet),
			slog.String("card_id", req.CardID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record purchase")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
