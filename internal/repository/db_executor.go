// internal/repository/db_executor.go
package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBExecutor is the query surface shared by *sqlx.DB and *sqlx.Tx. Ledger mutations pass the
// transaction so row locks taken by one repository cover the writes of the next.
type DBExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ DBExecutor = (*sqlx.DB)(nil)
	_ DBExecutor = (*sqlx.Tx)(nil)
)
