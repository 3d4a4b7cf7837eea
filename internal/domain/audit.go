// internal/domain/audit.go
package domain

import (
	"encoding/json"
	"time"
)

// Audit log statuses.
const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// AuditLog is an append-only record of a fact observed by the ledger.
// It never participates in financial correctness.
type AuditLog struct {
	ID           int64           `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`   // transaction, transfer, wallet, ledger
	Action       string          `db:"action" json:"action"`           // wallet_funded, transfer_failed, ...
	EntityType   string          `db:"entity_type" json:"entity_type"` // Wallet, Transaction, Transfer
	EntityID     *int64          `db:"entity_id" json:"entity_id"`
	Reference    *string         `db:"reference" json:"reference"`
	UserID       *int64          `db:"user_id" json:"user_id"`
	WalletID     *int64          `db:"wallet_id" json:"wallet_id"`
	OldValues    json.RawMessage `db:"old_values" json:"old_values"`
	NewValues    json.RawMessage `db:"new_values" json:"new_values"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
