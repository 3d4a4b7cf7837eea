// internal/api/handler/wallet.go
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"walletledger/internal/api/types"
	"walletledger/internal/domain"
	"walletledger/internal/service"
	"walletledger/internal/util" // For custom errors
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	ledger    service.WalletLedger
	transfers service.TransferCoordinator
	logger    *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger service.WalletLedger, transfers service.TransferCoordinator, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		ledger:    ledger,
		transfers: transfers,
		logger:    logger,
	}
}

// CreateWalletRequest represents the request body for wallet creation.
type CreateWalletRequest struct {
	UserID int64 `json:"user_id"`
}

// MovementRequest represents the request body for fund and withdraw.
// Amount accepts a JSON string or number.
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// MovementResponse is returned by fund and withdraw.
type MovementResponse struct {
	Message     string              `json:"message"`
	Transaction *domain.Transaction `json:"transaction"`
}

// CreateWallet handles the create wallet request.
// POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	if req.UserID <= 0 {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, err := h.ledger.CreateWallet(r.Context(), req.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, wallet)
}

// GetWallet returns the wallet and its transaction summary.
// GET /wallets/{walletID}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	details, err := h.ledger.GetWalletDetails(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, details)
}

// Fund handles the fund wallet request.
// POST /wallets/{walletID}/fund
func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.ledger.Credit, "Wallet funded")
}

// Withdraw handles the withdraw money request.
// POST /wallets/{walletID}/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.ledger.Debit, "Withdrawal successful")
}

type movementFunc func(ctx context.Context, walletID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)

func (h *WalletHandler) move(w http.ResponseWriter, r *http.Request, apply movementFunc, message string) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req MovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	transaction, err := apply(r.Context(), walletID, req.Amount, req.Description)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, MovementResponse{Message: message, Transaction: transaction})
}

// DeleteWallet handles the delete wallet request.
// DELETE /wallets/{walletID}
func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	deleted, err := h.ledger.DeleteWallet(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"wallet_id": walletID,
		"deleted":   deleted,
	})
}

// GetTransactionHistory handles the get transaction history request.
// GET /wallets/{walletID}/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	limit, offset := pagination(r)

	transactions, totalCount, err := h.ledger.GetTransactionHistory(r.Context(), walletID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.NewPaginatedResponse(transactions, limit, offset, totalCount))
}

// GetWalletTransfers handles the list wallet transfers request.
// GET /wallets/{walletID}/transfers
func (h *WalletHandler) GetWalletTransfers(w http.ResponseWriter, r *http.Request) {
	walletID, err := idParam(r, "walletID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	transfers, err := h.transfers.GetWalletTransfers(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, types.NewListResponse(transfers))
}

// GetTransactionByReference handles the transaction lookup request.
// GET /transactions/{reference}
func (h *WalletHandler) GetTransactionByReference(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.ledger.GetTransactionByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, transaction)
}
