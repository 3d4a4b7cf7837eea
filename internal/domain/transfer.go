// internal/domain/transfer.go
package domain

import (
	"fmt"
	"time"

	"walletledger/internal/util"
)

// Transfer is one wallet-to-wallet movement backed by a transfer_out and a transfer_in entry.
type Transfer struct {
	ID               int64     `db:"id" json:"id"`
	SenderWalletID   int64     `db:"sender_wallet_id" json:"sender_wallet_id"`
	ReceiverWalletID int64     `db:"receiver_wallet_id" json:"receiver_wallet_id"`
	Amount           Money     `db:"amount" json:"amount"`
	Reference        string    `db:"reference" json:"reference"`
	Description      *string   `db:"description" json:"description"`
	Status           Status    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// NewTransfer creates a pending transfer with a fresh reference.
func NewTransfer(senderWalletID, receiverWalletID int64, amount Money, description *string) *Transfer {
	now := time.Now().UTC()
	return &Transfer{
		SenderWalletID:   senderWalletID,
		ReceiverWalletID: receiverWalletID,
		Amount:           amount,
		Reference:        NewReference(),
		Description:      description,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Validate checks the structural rules a transfer row must satisfy before it is written.
func (t *Transfer) Validate() error {
	if t.SenderWalletID <= 0 || t.ReceiverWalletID <= 0 {
		return fmt.Errorf("%w: missing wallet id", util.ErrStructuralValidation)
	}
	if t.SenderWalletID == t.ReceiverWalletID {
		return fmt.Errorf("%w: sender and receiver are the same wallet", util.ErrStructuralValidation)
	}
	if !t.Amount.IsPositive() || t.Amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: invalid amount %s", util.ErrStructuralValidation, t.Amount)
	}
	if !ValidReference(t.Reference) {
		return fmt.Errorf("%w: invalid reference format %q", util.ErrStructuralValidation, t.Reference)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: invalid transfer status %q", util.ErrStructuralValidation, t.Status)
	}
	return nil
}

// Entries builds the linked double-entry pair for a persisted transfer.
func (t *Transfer) Entries() []*Transaction {
	transferID := t.ID
	return []*Transaction{
		NewTransaction(t.SenderWalletID, TransactionTypeTransferOut, t.Amount, t.Description, &transferID),
		NewTransaction(t.ReceiverWalletID, TransactionTypeTransferIn, t.Amount, t.Description, &transferID),
	}
}

// Direction is how a transfer looks from one wallet's point of view.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// DirectionFor returns outgoing when walletID sent the transfer, incoming otherwise.
func (t *Transfer) DirectionFor(walletID int64) Direction {
	if t.SenderWalletID == walletID {
		return DirectionOutgoing
	}
	return DirectionIncoming
}

// WalletTransfer is a transfer annotated with its direction relative to a wallet.
type WalletTransfer struct {
	Transfer
	Direction Direction `json:"direction"`
}
