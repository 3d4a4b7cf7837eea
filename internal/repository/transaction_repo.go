// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"walletledger/internal/domain"
)

// TransactionRepository is the append-only journal. Entries are validated before
// anything is written; there is no update or delete.
type TransactionRepository interface {
	// CreateTransaction validates and appends one entry, filling its ID.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// CreateTransactions validates every entry and appends them in a single statement.
	// One invalid entry aborts the whole batch.
	CreateTransactions(ctx context.Context, q DBExecutor, transactions []*domain.Transaction) error
	// GetTransactionsByWalletID retrieves a page of a wallet's entries and the total count.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// ListTransactionsByWalletID retrieves every entry of a wallet, newest first.
	ListTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64) ([]domain.Transaction, error)
	// GetTransactionByReference retrieves one entry by its reference.
	GetTransactionByReference(ctx context.Context, q DBExecutor, reference string) (*domain.Transaction, error)
	// GetTransactionsByTransferID retrieves the entries linked to a transfer with the given status.
	GetTransactionsByTransferID(ctx context.Context, q DBExecutor, transferID int64, status domain.Status) ([]domain.Transaction, error)
	// GetWalletSummary sums completed inflows and outflows of a wallet.
	GetWalletSummary(ctx context.Context, q DBExecutor, walletID int64) (domain.TransactionSummary, error)
}
