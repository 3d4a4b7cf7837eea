// internal/repository/transfer_repo.go
package repository

import (
	"context"

	"walletledger/internal/domain"
)

// TransferRepository defines the interface for transfer data operations.
type TransferRepository interface {
	// CreateTransfer inserts a transfer row, filling its ID and timestamps.
	CreateTransfer(ctx context.Context, q DBExecutor, transfer *domain.Transfer) error
	// UpdateTransferStatus moves a pending transfer to a terminal status.
	// It fails with util.ErrInvalidStatusTransition when the transfer is not pending.
	UpdateTransferStatus(ctx context.Context, q DBExecutor, id int64, status domain.Status) error
	// GetTransferByID retrieves a transfer by its ID.
	GetTransferByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transfer, error)
	// GetTransfersByWalletID retrieves transfers where the wallet is sender or receiver.
	GetTransfersByWalletID(ctx context.Context, q DBExecutor, walletID int64) ([]domain.Transfer, error)
}
