// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"walletledger/internal/domain"
)

// WalletRepository defines the interface for wallet data operations.
// Lookups that miss return util.ErrNotFound.
type WalletRepository interface {
	// CreateWallet adds a new wallet to the database.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID without locking.
	GetWalletByID(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// GetWalletByIDForUpdate retrieves a wallet and holds an exclusive row lock on it
	// until q's transaction ends. q must be a transaction.
	GetWalletByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// GetWalletByUserIDForUpdate retrieves and locks the wallet owned by userID.
	GetWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// UpdateWalletBalance overwrites the balance after checking it lies within bounds.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID int64, newBalance domain.Money) error
	// DeleteWallet removes the wallet row and reports whether a row was deleted.
	DeleteWallet(ctx context.Context, q DBExecutor, id int64) (bool, error)
}
