// internal/service/integrity_verifier.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"walletledger/internal/audit"
	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/internal/util"
	"walletledger/pkg/db"
)

// IntegrityVerifier reconciles stored state against the journal. It never writes
// financial data.
type IntegrityVerifier interface {
	VerifyWallet(ctx context.Context, walletID int64) (*domain.WalletIntegrity, error)
	VerifyTransfer(ctx context.Context, transferID int64) (*domain.TransferIntegrity, error)
	AuditTrail(ctx context.Context, walletID int64) (*domain.AuditTrail, error)
}

type integrityVerifier struct {
	txRunner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	transferRepo    repository.TransferRepository
	auditLogger     audit.Logger
	logger          *slog.Logger
}

// NewIntegrityVerifier creates a new instance of IntegrityVerifier.
func NewIntegrityVerifier(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	transferRepo repository.TransferRepository,
	auditLogger audit.Logger,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) IntegrityVerifier {
	return &integrityVerifier{
		txRunner: txRunner{
			dbBeginner: dbBeginner,
			beginTx:    beginTx,
			commitTx:   commitTx,
			rollbackTx: rollbackTx,
		},
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		transferRepo:    transferRepo,
		auditLogger:     auditLogger,
		logger:          logger,
	}
}

// VerifyWallet compares the stored balance with the sum of completed entries.
// The wallet row lock keeps writers out between reading the balance and the summary.
func (v *integrityVerifier) VerifyWallet(ctx context.Context, walletID int64) (*domain.WalletIntegrity, error) {
	var result *domain.WalletIntegrity
	err := v.withinTx(ctx, "verify wallet", func(q repository.DBExecutor) error {
		_, integrity, err := v.reconcileLocked(ctx, q, walletID)
		result = integrity
		return err
	})
	if err != nil {
		return nil, err
	}
	v.reportWalletDrift(ctx, result)
	return result, nil
}

// reconcileLocked locks the wallet and reconciles it against its journal within q.
func (v *integrityVerifier) reconcileLocked(ctx context.Context, q repository.DBExecutor, walletID int64) (*domain.Wallet, *domain.WalletIntegrity, error) {
	wallet, err := lockWallet(ctx, v.walletRepo, q, walletID)
	if err != nil {
		return nil, nil, err
	}
	summary, err := v.transactionRepo.GetWalletSummary(ctx, q, walletID)
	if err != nil {
		return nil, nil, fmt.Errorf("verify wallet: %w", err)
	}
	return wallet, domain.ReconcileWallet(wallet, summary), nil
}

func (v *integrityVerifier) reportWalletDrift(ctx context.Context, result *domain.WalletIntegrity) {
	if result.Valid {
		return
	}
	v.logger.ErrorContext(ctx, "Wallet balance integrity check failed",
		"severity", "critical",
		"wallet_id", result.WalletID,
		"actual_balance", result.ActualBalance.String(),
		"calculated_balance", result.CalculatedBalance.String(),
		"difference", result.Difference.String(),
	)
	v.auditLogger.Log(ctx, audit.Event{
		EventType:    audit.EventTypeLedger,
		Action:       audit.ActionIntegrityCheckFailed,
		EntityType:   audit.EntityWallet,
		EntityID:     audit.Int64(result.WalletID),
		WalletID:     audit.Int64(result.WalletID),
		Status:       domain.AuditStatusFailed,
		ErrorMessage: "wallet balance does not match transaction history",
		NewValues: map[string]any{
			"actual_balance":     result.ActualBalance.String(),
			"calculated_balance": result.CalculatedBalance.String(),
			"difference":         result.Difference.String(),
		},
	})
}

// VerifyTransfer checks that a transfer is backed by exactly one matching, linked
// transfer_out/transfer_in pair.
func (v *integrityVerifier) VerifyTransfer(ctx context.Context, transferID int64) (*domain.TransferIntegrity, error) {
	transfer, err := v.transferRepo.GetTransferByID(ctx, v.dbExecutor, transferID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrTransferNotFound
		}
		return nil, fmt.Errorf("verify transfer: %w", err)
	}

	entries, err := v.transactionRepo.GetTransactionsByTransferID(ctx, v.dbExecutor, transferID, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("verify transfer: %w", err)
	}

	result := domain.CheckTransferEntries(transfer, entries)
	if !result.Valid {
		v.logger.ErrorContext(ctx, "Transfer integrity check failed",
			"severity", "critical",
			"transfer_id", transferID,
			"reference", transfer.Reference,
			"status", transfer.Status,
			"errors", result.Errors,
		)
		v.auditLogger.Log(ctx, audit.Event{
			EventType:    audit.EventTypeLedger,
			Action:       audit.ActionIntegrityCheckFailed,
			EntityType:   audit.EntityTransfer,
			EntityID:     audit.Int64(transferID),
			Reference:    transfer.Reference,
			WalletID:     audit.Int64(transfer.SenderWalletID),
			Status:       domain.AuditStatusFailed,
			ErrorMessage: strings.Join(result.Errors, "; "),
			NewValues: map[string]any{
				"transfer_status": string(transfer.Status),
				"transfer_amount": result.TransferAmount.String(),
				"valid":           result.Valid,
				"errors":          result.Errors,
			},
		})
	}
	return result, nil
}

// AuditTrail collects a wallet's entries, transfers and integrity result. Everything is read
// under the wallet row lock so the reported balance is the one that was reconciled.
func (v *integrityVerifier) AuditTrail(ctx context.Context, walletID int64) (*domain.AuditTrail, error) {
	trail := &domain.AuditTrail{}
	err := v.withinTx(ctx, "audit trail", func(q repository.DBExecutor) error {
		wallet, integrity, err := v.reconcileLocked(ctx, q, walletID)
		if err != nil {
			return err
		}
		transactions, err := v.transactionRepo.ListTransactionsByWalletID(ctx, q, walletID)
		if err != nil {
			return fmt.Errorf("audit trail: %w", err)
		}
		transfers, err := walletTransfers(ctx, v.transferRepo, q, walletID)
		if err != nil {
			return fmt.Errorf("audit trail: %w", err)
		}

		trail.Wallet = wallet
		trail.Transactions = transactions
		trail.Transfers = transfers
		trail.Integrity = integrity
		return nil
	})
	if err != nil {
		return nil, err
	}
	v.reportWalletDrift(ctx, trail.Integrity)
	return trail, nil
}
