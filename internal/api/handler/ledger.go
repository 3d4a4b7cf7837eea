// internal/api/handler/ledger.go
package handler

import (
	"log/slog"
	"net/http"

	"walletledger/internal/service"
)

// LedgerHandler exposes the read-only integrity checks.
type LedgerHandler struct {
	verifier service.IntegrityVerifier
	logger   *slog.Logger
}

func NewLedgerHandler(verifier service.IntegrityVerifier, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{verifier: verifier, logger: logger}
}

// VerifyWallet handles GET /ledger/wallets/{walletID}/verify
func (h *LedgerHandler) VerifyWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	result, err := h.verifier.VerifyWallet(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, result)
}

// VerifyTransfer handles GET /ledger/transfers/{transferID}/verify
func (h *LedgerHandler) VerifyTransfer(w http.ResponseWriter, r *http.Request) {
	transferID, err := idParam(r, "transferID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	result, err := h.verifier.VerifyTransfer(r.Context(), transferID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, result)
}

// AuditTrail handles GET /ledger/wallets/{walletID}/audit-trail
func (h *LedgerHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	trail, err := h.verifier.AuditTrail(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, trail)
}
