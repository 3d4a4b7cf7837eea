// internal/domain/wallet.go
package domain

import (
	"time"
)

// Wallet represents a user's wallet. Each user owns at most one.
type Wallet struct {
	ID        int64     `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	UserID    int64     `db:"user_id" json:"user_id"`       // Foreign key to User, immutable
	Balance   Money     `db:"balance" json:"balance"`       // Current balance, NUMERIC(14, 2) in DB
	CreatedAt time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewWallet creates a new Wallet instance with a zero balance.
func NewWallet(userID int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:    userID,
		Balance:   Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeletableBalance is the largest balance a wallet may hold and still be deleted.
var DeletableBalance = Tolerance

// CanBeDeleted reports whether the balance is close enough to zero for deletion.
func (w *Wallet) CanBeDeleted() bool {
	return !w.Balance.GreaterThan(DeletableBalance)
}

// WalletDetails is a wallet together with the completed totals of its journal.
type WalletDetails struct {
	Wallet  *Wallet            `json:"wallet"`
	Summary TransactionSummary `json:"transaction_summary"`
}
