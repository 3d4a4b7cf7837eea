// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// Constraint names declared in the migrations.
const (
	constraintUsername          = "users_username_key"
	constraintWalletUser        = "wallets_user_id_key"
	constraintTransactionRef    = "transactions_reference_key"
	constraintTransferReference = "transfers_reference_key"
)

// isUniqueViolation reports whether err is a unique violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
