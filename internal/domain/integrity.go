// internal/domain/integrity.go
package domain

// WalletIntegrity is the reconciliation of a stored balance against journal history.
type WalletIntegrity struct {
	WalletID          int64 `json:"wallet_id"`
	Valid             bool  `json:"valid"`
	ActualBalance     Money `json:"actual_balance"`
	CalculatedBalance Money `json:"calculated_balance"`
	Difference        Money `json:"difference"`
	CreditTotal       Money `json:"credit_total"`
	DebitTotal        Money `json:"debit_total"`
}

// ReconcileWallet compares a wallet balance with its journal summary.
func ReconcileWallet(wallet *Wallet, summary TransactionSummary) *WalletIntegrity {
	calculated := summary.Net()
	return &WalletIntegrity{
		WalletID:          wallet.ID,
		Valid:             wallet.Balance.ApproxEqual(calculated),
		ActualBalance:     wallet.Balance,
		CalculatedBalance: calculated,
		Difference:        wallet.Balance.Sub(calculated).Abs(),
		CreditTotal:       summary.CreditTotal,
		DebitTotal:        summary.DebitTotal,
	}
}

// EntryRef identifies one side of a transfer in an integrity report.
type EntryRef struct {
	ID        int64  `json:"id"`
	Amount    Money  `json:"amount"`
	Reference string `json:"reference"`
}

// Transfer integrity error messages.
const (
	ErrMsgDebitMissing        = "debit transaction missing"
	ErrMsgCreditMissing       = "credit transaction missing"
	ErrMsgDuplicateDebit      = "more than one debit transaction linked to the transfer"
	ErrMsgDuplicateCredit     = "more than one credit transaction linked to the transfer"
	ErrMsgEntryAmountMismatch = "transaction amounts do not match"
	ErrMsgTransferMismatch    = "transfer amount does not match transaction amounts"
	ErrMsgBrokenLink          = "transactions are not properly linked to the transfer"
)

// TransferIntegrity is the structural check of a transfer's double-entry pair.
type TransferIntegrity struct {
	TransferID        int64     `json:"transfer_id"`
	TransferReference string    `json:"transfer_reference"`
	TransferAmount    Money     `json:"transfer_amount"`
	DebitTransaction  *EntryRef `json:"debit_transaction"`
	CreditTransaction *EntryRef `json:"credit_transaction"`
	Valid             bool      `json:"valid"`
	Errors            []string  `json:"errors"`
}

// CheckTransferEntries verifies that the completed entries form exactly one linked
// transfer_out/transfer_in pair matching the transfer amount.
func CheckTransferEntries(transfer *Transfer, completed []Transaction) *TransferIntegrity {
	result := &TransferIntegrity{
		TransferID:        transfer.ID,
		TransferReference: transfer.Reference,
		TransferAmount:    transfer.Amount,
		Errors:            []string{},
	}

	var debits, credits []Transaction
	for _, entry := range completed {
		switch entry.Type {
		case TransactionTypeTransferOut:
			debits = append(debits, entry)
		case TransactionTypeTransferIn:
			credits = append(credits, entry)
		}
	}

	switch {
	case len(debits) == 0:
		result.Errors = append(result.Errors, ErrMsgDebitMissing)
	case len(debits) > 1:
		result.Errors = append(result.Errors, ErrMsgDuplicateDebit)
	}
	switch {
	case len(credits) == 0:
		result.Errors = append(result.Errors, ErrMsgCreditMissing)
	case len(credits) > 1:
		result.Errors = append(result.Errors, ErrMsgDuplicateCredit)
	}

	if len(debits) > 0 {
		result.DebitTransaction = &EntryRef{ID: debits[0].ID, Amount: debits[0].Amount, Reference: debits[0].Reference}
	}
	if len(credits) > 0 {
		result.CreditTransaction = &EntryRef{ID: credits[0].ID, Amount: credits[0].Amount, Reference: credits[0].Reference}
	}

	if len(debits) > 0 && len(credits) > 0 {
		debit, credit := debits[0], credits[0]
		if !debit.Amount.ApproxEqual(credit.Amount) {
			result.Errors = append(result.Errors, ErrMsgEntryAmountMismatch)
		}
		if !debit.Amount.ApproxEqual(transfer.Amount) {
			result.Errors = append(result.Errors, ErrMsgTransferMismatch)
		}
		if !linkedTo(debit, transfer.ID) || !linkedTo(credit, transfer.ID) {
			result.Errors = append(result.Errors, ErrMsgBrokenLink)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func linkedTo(entry Transaction, transferID int64) bool {
	return entry.TransferID != nil && *entry.TransferID == transferID
}

// AuditTrail gathers everything recorded about one wallet for reporting.
type AuditTrail struct {
	Wallet       *Wallet          `json:"wallet"`
	Transactions []Transaction    `json:"transactions"`
	Transfers    []WalletTransfer `json:"transfers"`
	Integrity    *WalletIntegrity `json:"integrity_check"`
}
