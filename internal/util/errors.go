// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Common application-specific errors.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrTransferNotFound  = errors.New("transfer not found")
	ErrTxNotFound        = errors.New("transaction not found")
	ErrSameWallet        = errors.New("sender and receiver wallets must be different")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient balance")

	ErrAmountExceedsMaximum       = errors.New("amount exceeds maximum allowed value")
	ErrBalanceExceedsMaximum      = errors.New("balance would exceed maximum allowed value")
	ErrUserAlreadyHasWallet       = errors.New("user already has a wallet")
	ErrCannotDeleteNonZeroBalance = errors.New("cannot delete wallet with non-zero balance")
	ErrStructuralValidation       = errors.New("structural validation failed")
	ErrInvalidStatusTransition    = errors.New("invalid status transition")

	// Role-specific variants keep errors.Is matching against their general form.
	ErrSenderWalletNotFound          = fmt.Errorf("sender %w", ErrWalletNotFound)
	ErrReceiverWalletNotFound        = fmt.Errorf("receiver %w", ErrWalletNotFound)
	ErrReceiverBalanceExceedsMaximum = fmt.Errorf("receiver %w", ErrBalanceExceedsMaximum)
)

// Kind classifies an error for translation at the service boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

var notFoundErrors = []error{ErrNotFound, ErrWalletNotFound, ErrUserNotFound, ErrTransferNotFound, ErrTxNotFound}

var invalidErrors = []error{
	ErrInvalidInput,
	ErrSameWallet,
	ErrInvalidAmount,
	ErrAmountExceedsMaximum,
	ErrInsufficientFunds,
	ErrBalanceExceedsMaximum,
	ErrCannotDeleteNonZeroBalance,
	ErrStructuralValidation,
	ErrInvalidStatusTransition,
}

// KindOf reports the classification of err. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if errors.Is(err, ErrUserAlreadyHasWallet) || errors.Is(err, ErrDuplicateEntry) {
		return KindConflict
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	for _, target := range invalidErrors {
		if errors.Is(err, target) {
			return KindInvalid
		}
	}
	return KindInternal
}
