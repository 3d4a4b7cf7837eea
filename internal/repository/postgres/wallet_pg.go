// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/internal/util"
)

const walletColumns = `id, user_id, balance, created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet into the database using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, wallet.UserID, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt).Scan(&wallet.ID)
	if err != nil {
		if isUniqueViolation(err, constraintWalletUser) {
			return util.ErrUserAlreadyHasWallet
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.getWallet(ctx, q, query, id, "ID")
}

// GetWalletByIDForUpdate retrieves a wallet and locks its row until the enclosing transaction ends.
// Concurrent callers block on the lock; a missing row takes no lock.
func (r *WalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return r.getWallet(ctx, q, query, id, "ID")
}

// GetWalletByUserIDForUpdate retrieves and locks the wallet owned by the given user.
func (r *WalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	return r.getWallet(ctx, q, query, userID, "user ID")
}

func (r *WalletRepository) getWallet(ctx context.Context, q repository.DBExecutor, query string, key int64, keyName string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := q.GetContext(ctx, &wallet, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by %s %d: %w", keyName, key, err)
	}
	return &wallet, nil
}

// UpdateWalletBalance writes the new absolute balance of a wallet.
// Balances outside [0, max] are rejected before any write.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, newBalance domain.Money) error {
	if err := newBalance.ValidateBalance(); err != nil {
		return err
	}

	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, newBalance, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet balance for ID %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update balance of wallet %d: %w", walletID, util.ErrWalletNotFound)
	}
	return nil
}

// DeleteWallet removes a wallet row. Journal entries are kept.
func (r *WalletRepository) DeleteWallet(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete wallet %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after deleting wallet %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}
