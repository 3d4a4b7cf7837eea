// internal/repository/postgres/transaction_pg.go
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

const (
	transactionColumns      = `id, wallet_id, type, amount, reference, description, status, transfer_id, created_at`
	transactionInsertFields = 8
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// prepare fills defaults and validates an entry before it is written.
func prepareTransaction(transaction *domain.Transaction) error {
	if transaction.Reference == "" {
		transaction.Reference = domain.NewReference()
	}
	transaction.Reference = strings.ToLower(transaction.Reference)
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	return transaction.Validate()
}

func journalWriteError(err error) error {
	if isUniqueViolation(err, constraintTransactionRef) {
		return fmt.Errorf("%w: duplicate transaction reference", util.ErrStructuralValidation)
	}
	return fmt.Errorf("failed to create transaction: %w", err)
}

// CreateTransaction validates and inserts a new journal entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	if err := prepareTransaction(transaction); err != nil {
		return err
	}

	query := `INSERT INTO transactions (wallet_id, type, amount, reference, description, status, transfer_id, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.Type,
		transaction.Amount,
		transaction.Reference,
		transaction.Description,
		transaction.Status,
		transaction.TransferID,
		transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return journalWriteError(err)
	}
	return nil
}

// CreateTransactions validates the whole batch first and then writes it with one multi-row
// INSERT, so either every entry is stored or none is.
func (r *TransactionRepository) CreateTransactions(ctx context.Context, q repository.DBExecutor, transactions []*domain.Transaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("%w: empty transaction batch", util.ErrStructuralValidation)
	}

	seen := make(map[string]struct{}, len(transactions))
	for i, transaction := range transactions {
		if transaction == nil {
			return fmt.Errorf("%w: nil transaction at index %d", util.ErrStructuralValidation, i)
		}
		if err := prepareTransaction(transaction); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
		if _, dup := seen[transaction.Reference]; dup {
			return fmt.Errorf("%w: duplicate reference at index %d", util.ErrStructuralValidation, i)
		}
		seen[transaction.Reference] = struct{}{}
	}

	var sb strings.Builder
	args := make([]interface{}, 0, len(transactions)*transactionInsertFields)
	sb.WriteString(`INSERT INTO transactions (wallet_id, type, amount, reference, description, status, transfer_id, created_at) VALUES `)
	for i, transaction := range transactions {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * transactionInsertFields
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args,
			transaction.WalletID,
			transaction.Type,
			transaction.Amount,
			transaction.Reference,
			transaction.Description,
			transaction.Status,
			transaction.TransferID,
			transaction.CreatedAt,
		)
	}
	sb.WriteString(` RETURNING id, reference`)

	var inserted []struct {
		ID        int64  `db:"id"`
		Reference string `db:"reference"`
	}
	if err := q.SelectContext(ctx, &inserted, sb.String(), args...); err != nil {
		return journalWriteError(err)
	}

	ids := make(map[string]int64, len(inserted))
	for _, row := range inserted {
		ids[row.Reference] = row.ID
	}
	for _, transaction := range transactions {
		transaction.ID = ids[transaction.Reference]
	}
	return nil
}

// GetTransactionsByWalletID retrieves a paginated list of transactions for a specific wallet.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, walletID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for wallet %d: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

// ListTransactionsByWalletID retrieves every journal entry of a wallet, newest first.
func (r *TransactionRepository) ListTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC, id DESC`
	if err := q.SelectContext(ctx, &transactions, query, walletID); err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %d: %w", walletID, err)
	}
	return transactions, nil
}

// GetTransactionByReference retrieves one journal entry by its reference.
func (r *TransactionRepository) GetTransactionByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	if !domain.ValidReference(reference) {
		return nil, util.ErrNotFound
	}
	var transaction domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	if err := q.GetContext(ctx, &transaction, query, strings.ToLower(reference)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference %s: %w", reference, err)
	}
	return &transaction, nil
}

// GetTransactionsByTransferID retrieves the entries linked to a transfer with the given status.
func (r *TransactionRepository) GetTransactionsByTransferID(ctx context.Context, q repository.DBExecutor, transferID int64, status domain.Status) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transfer_id = $1 AND status = $2 ORDER BY id`
	if err := q.SelectContext(ctx, &transactions, query, transferID, status); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for transfer %d: %w", transferID, err)
	}
	return transactions, nil
}

// GetWalletSummary sums completed entries: credit and transfer_in count as inflow,
// debit and transfer_out as outflow.
func (r *TransactionRepository) GetWalletSummary(ctx context.Context, q repository.DBExecutor, walletID int64) (domain.TransactionSummary, error) {
	var summary domain.TransactionSummary
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type IN ($2, $3) THEN amount ELSE 0 END), 0) AS credit_total,
			COALESCE(SUM(CASE WHEN type IN ($4, $5) THEN amount ELSE 0 END), 0) AS debit_total
		FROM transactions
		WHERE wallet_id = $1 AND status = $6`
	err := q.GetContext(ctx, &summary, query,
		walletID,
		domain.TransactionTypeCredit, domain.TransactionTypeTransferIn,
		domain.TransactionTypeDebit, domain.TransactionTypeTransferOut,
		domain.StatusCompleted,
	)
	if err != nil {
		return domain.TransactionSummary{}, fmt.Errorf("failed to summarize transactions for wallet %d: %w", walletID, err)
	}
	return summary, nil
}
