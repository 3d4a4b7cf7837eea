// internal/repository/postgres/transfer_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/internal/util"
)

const transferColumns = `id, sender_wallet_id, receiver_wallet_id, amount, reference, description, status, created_at, updated_at`

// TransferRepository implements repository.TransferRepository for PostgreSQL.
type TransferRepository struct{}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository() repository.TransferRepository {
	return &TransferRepository{}
}

// CreateTransfer inserts a transfer row using the provided DBExecutor.
func (r *TransferRepository) CreateTransfer(ctx context.Context, q repository.DBExecutor, transfer *domain.Transfer) error {
	if transfer.Reference == "" {
		transfer.Reference = domain.NewReference()
	}
	transfer.Reference = strings.ToLower(transfer.Reference)
	if err := transfer.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO transfers (sender_wallet_id, receiver_wallet_id, amount, reference, description, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transfer.SenderWalletID,
		transfer.ReceiverWalletID,
		transfer.Amount,
		transfer.Reference,
		transfer.Description,
		transfer.Status,
		transfer.CreatedAt,
		transfer.UpdatedAt,
	).Scan(&transfer.ID)
	if err != nil {
		if isUniqueViolation(err, constraintTransferReference) {
			return fmt.Errorf("%w: duplicate transfer reference", util.ErrStructuralValidation)
		}
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// UpdateTransferStatus moves a pending transfer to completed or failed.
// The WHERE clause makes the transition happen at most once.
func (r *TransferRepository) UpdateTransferStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.Status) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: cannot move transfer %d to %q", util.ErrInvalidStatusTransition, id, status)
	}

	query := `UPDATE transfers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update status of transfer %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating transfer %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: transfer %d is not pending", util.ErrInvalidStatusTransition, id)
	}
	return nil
}

// GetTransferByID retrieves a transfer by its ID.
func (r *TransferRepository) GetTransferByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transfer, error) {
	var transfer domain.Transfer
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	if err := q.GetContext(ctx, &transfer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer by ID %d: %w", id, err)
	}
	return &transfer, nil
}

// GetTransfersByWalletID retrieves every transfer the wallet sent or received, newest first.
func (r *TransferRepository) GetTransfersByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) ([]domain.Transfer, error) {
	transfers := []domain.Transfer{}
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
		ORDER BY created_at DESC, id DESC`
	if err := q.SelectContext(ctx, &transfers, query, walletID); err != nil {
		return nil, fmt.Errorf("failed to fetch transfers for wallet %d: %w", walletID, err)
	}
	return transfers, nil
}
