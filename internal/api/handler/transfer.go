// internal/api/handler/transfer.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"walletledger/internal/service"
	"walletledger/internal/util"
)

// TransferHandler handles HTTP requests for wallet-to-wallet transfers.
type TransferHandler struct {
	service service.TransferCoordinator
	logger  *slog.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(svc service.TransferCoordinator, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		service: svc,
		logger:  logger,
	}
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	SenderWalletID   int64           `json:"sender_wallet_id"`
	ReceiverWalletID int64           `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
}

// CreateTransfer handles the transfer money request.
// POST /transfers
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	// Basic validation
	if req.SenderWalletID <= 0 || req.ReceiverWalletID <= 0 {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	transfer, err := h.service.Initiate(r.Context(), req.SenderWalletID, req.ReceiverWalletID, req.Amount, req.Description)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, transfer)
}

// GetTransfer handles the get transfer request.
// GET /transfers/{transferID}
func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	transferID, err := idParam(r, "transferID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	transfer, err := h.service.GetTransfer(r.Context(), transferID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, transfer)
}
