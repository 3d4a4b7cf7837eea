// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"walletledger/internal/repository"
	"walletledger/pkg/db"
)

// txRunner owns the injected transaction lifecycle shared by the ledger services.
type txRunner struct {
	dbBeginner db.DBTxBeginner   // For starting transactions (e.g., *sqlx.DB)
	beginTx    db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx   db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx db.RollbackTxFunc // Injected dependency for rolling back transactions
}

// withinTx runs fn inside one storage transaction. Any error from fn, or a failed commit,
// leaves the transaction rolled back.
func (r txRunner) withinTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := r.beginTx(ctx, r.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer r.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := r.commitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}
