// internal/domain/transaction.go
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"walletledger/internal/util"
)

// TransactionType defines the kind of balance movement a journal entry records.
type TransactionType string

const (
	TransactionTypeCredit      TransactionType = "credit"
	TransactionTypeDebit       TransactionType = "debit"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeDebit, TransactionTypeTransferIn, TransactionTypeTransferOut:
		return true
	}
	return false
}

// IsTransfer reports whether t belongs to one side of a transfer.
func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeTransferIn || t == TransactionTypeTransferOut
}

// IsInflow reports whether t increases the wallet balance.
func (t TransactionType) IsInflow() bool {
	return t == TransactionTypeCredit || t == TransactionTypeTransferIn
}

// Status is shared by journal entries and transfers.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MaxDescriptionLength bounds stored descriptions, in runes.
const MaxDescriptionLength = 500

var (
	referencePattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
)

// NewReference returns a fresh random UUID-v4 string.
func NewReference() string {
	return uuid.NewString()
}

// ValidReference reports whether ref is UUID shaped.
func ValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}

// SanitizeDescription strips markup and truncates to MaxDescriptionLength runes.
// Empty input yields nil.
func SanitizeDescription(description string) *string {
	cleaned := strings.TrimSpace(tagPattern.ReplaceAllString(description, ""))
	if cleaned == "" {
		return nil
	}
	if runes := []rune(cleaned); len(runes) > MaxDescriptionLength {
		cleaned = string(runes[:MaxDescriptionLength])
	}
	return &cleaned
}

// Transaction is an immutable journal entry recording one balance movement on one wallet.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`                   // Primary key, BIGSERIAL in DB
	WalletID    int64           `db:"wallet_id" json:"wallet_id"`     // Wallet whose balance moved
	Type        TransactionType `db:"type" json:"type"`               // credit, debit, transfer_in, transfer_out
	Amount      Money           `db:"amount" json:"amount"`           // Always positive, NUMERIC(14, 2) in DB
	Reference   string          `db:"reference" json:"reference"`     // Unique UUID-v4
	Description *string         `db:"description" json:"description"` // Optional description
	Status      Status          `db:"status" json:"status"`           // pending, completed, failed
	TransferID  *int64          `db:"transfer_id" json:"transfer_id"` // Set only for transfer entries
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`   // Timestamp of record creation
}

// NewTransaction creates a completed journal entry with a fresh reference.
func NewTransaction(walletID int64, txType TransactionType, amount Money, description *string, transferID *int64) *Transaction {
	return &Transaction{
		WalletID:    walletID,
		Type:        txType,
		Amount:      amount,
		Reference:   NewReference(),
		Description: description,
		Status:      StatusCompleted,
		TransferID:  transferID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks the structural rules every entry must satisfy before it is written.
func (t *Transaction) Validate() error {
	if t.WalletID <= 0 {
		return fmt.Errorf("%w: missing wallet_id", util.ErrStructuralValidation)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: invalid transaction type %q", util.ErrStructuralValidation, t.Type)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: invalid transaction status %q", util.ErrStructuralValidation, t.Status)
	}
	if !t.Amount.IsPositive() || t.Amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: invalid amount %s", util.ErrStructuralValidation, t.Amount)
	}
	if !ValidReference(t.Reference) {
		return fmt.Errorf("%w: invalid reference format %q", util.ErrStructuralValidation, t.Reference)
	}
	if t.Type.IsTransfer() && t.TransferID == nil {
		return fmt.Errorf("%w: %s entry requires transfer_id", util.ErrStructuralValidation, t.Type)
	}
	if !t.Type.IsTransfer() && t.TransferID != nil {
		return fmt.Errorf("%w: %s entry must not carry transfer_id", util.ErrStructuralValidation, t.Type)
	}
	return nil
}

// TransactionSummary holds the completed inflow and outflow totals of one wallet.
type TransactionSummary struct {
	CreditTotal Money `db:"credit_total" json:"credit_total"`
	DebitTotal  Money `db:"debit_total" json:"debit_total"`
}

// Net is CreditTotal - DebitTotal.
func (s TransactionSummary) Net() Money {
	return s.CreditTotal.Sub(s.DebitTotal)
}
