// internal/service/transfer_coordinator.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"walletledger/internal/audit"
	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/internal/util"
	"walletledger/pkg/db"
)

// TransferCoordinator moves money between two wallets as one double-entry transfer.
type TransferCoordinator interface {
	Initiate(ctx context.Context, senderWalletID, receiverWalletID int64, amount decimal.Decimal, description string) (*domain.Transfer, error)
	GetTransfer(ctx context.Context, transferID int64) (*domain.Transfer, error)
	GetWalletTransfers(ctx context.Context, walletID int64) ([]domain.WalletTransfer, error)
}

type transferCoordinator struct {
	txRunner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	transferRepo    repository.TransferRepository
	auditLogger     audit.Logger
	logger          *slog.Logger
}

// NewTransferCoordinator creates a new instance of TransferCoordinator.
func NewTransferCoordinator(
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
) TransferCoordinator {
	return &transferCoordinator{
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

// lockOrder returns the two ids ascending. Every transfer locks in this order so two
// opposite transfers between the same wallets cannot deadlock.
func lockOrder(a, b int64) [2]int64 {
	if a > b {
		return [2]int64{b, a}
	}
	return [2]int64{a, b}
}

// Initiate performs the transfer in one storage transaction. When it fails after the
// transfer row was inserted, the attempt is recorded as a failed transfer afterwards.
func (c *transferCoordinator) Initiate(ctx context.Context, senderWalletID, receiverWalletID int64, amount decimal.Decimal, description string) (*domain.Transfer, error) {
	return observe(ctx, c.logger, "initiate_transfer", func() (*domain.Transfer, error) {
		if senderWalletID == receiverWalletID {
			return nil, util.ErrSameWallet
		}

		var (
			transfer         *domain.Transfer
			sender, receiver *domain.Wallet
			balances         map[int64]domain.Money
		)
		err := c.withinTx(ctx, "transfer", func(q repository.DBExecutor) error {
			order := lockOrder(senderWalletID, receiverWalletID)
			locked := make(map[int64]*domain.Wallet, len(order))
			for _, id := range order {
				wallet, err := c.walletRepo.GetWalletByIDForUpdate(ctx, q, id)
				if err != nil {
					if errors.Is(err, util.ErrNotFound) {
						continue
					}
					return fmt.Errorf("transfer: failed to lock wallet %d: %w", id, err)
				}
				locked[id] = wallet
			}

			var ok bool
			if sender, ok = locked[senderWalletID]; !ok {
				return util.ErrSenderWalletNotFound
			}
			if receiver, ok = locked[receiverWalletID]; !ok {
				return util.ErrReceiverWalletNotFound
			}

			value, err := domain.NewAmount(amount)
			if err != nil {
				return err
			}
			if sender.Balance.LessThan(value) {
				return util.ErrInsufficientFunds
			}

			pending := domain.NewTransfer(senderWalletID, receiverWalletID, value, domain.SanitizeDescription(description))
			if err := c.transferRepo.CreateTransfer(ctx, q, pending); err != nil {
				return fmt.Errorf("transfer: failed to create transfer: %w", err)
			}
			transfer = pending

			balances = map[int64]domain.Money{
				senderWalletID:   sender.Balance.Sub(value),
				receiverWalletID: receiver.Balance.Add(value),
			}
			if balances[senderWalletID].IsNegative() {
				return util.ErrInsufficientFunds
			}
			if balances[receiverWalletID].GreaterThan(domain.MaxAmount) {
				return util.ErrReceiverBalanceExceedsMaximum
			}
			for _, id := range order {
				if err := c.walletRepo.UpdateWalletBalance(ctx, q, id, balances[id]); err != nil {
					return fmt.Errorf("transfer: failed to update wallet balance: %w", err)
				}
			}

			if err := c.transactionRepo.CreateTransactions(ctx, q, pending.Entries()); err != nil {
				return fmt.Errorf("transfer: failed to create transactions: %w", err)
			}
			if err := c.transferRepo.UpdateTransferStatus(ctx, q, pending.ID, domain.StatusCompleted); err != nil {
				return fmt.Errorf("transfer: failed to complete transfer: %w", err)
			}
			pending.Status = domain.StatusCompleted
			return nil
		})
		if err != nil {
			if transfer != nil {
				c.recordFailedTransfer(ctx, transfer, sender.UserID, err)
			}
			return nil, err
		}

		c.auditLogger.Log(ctx, audit.Event{
			EventType:  audit.EventTypeTransfer,
			Action:     audit.ActionTransferCompleted,
			EntityType: audit.EntityTransfer,
			EntityID:   audit.Int64(transfer.ID),
			Reference:  transfer.Reference,
			UserID:     audit.Int64(sender.UserID),
			WalletID:   audit.Int64(senderWalletID),
			OldValues: map[string]any{
				"sender_balance":   sender.Balance.String(),
				"receiver_balance": receiver.Balance.String(),
			},
			NewValues: map[string]any{
				"sender_wallet_id":   senderWalletID,
				"receiver_wallet_id": receiverWalletID,
				"receiver_user_id":   receiver.UserID,
				"amount":             transfer.Amount.String(),
				"status":             string(transfer.Status),
				"sender_balance":     balances[senderWalletID].String(),
				"receiver_balance":   balances[receiverWalletID].String(),
			},
		})
		return transfer, nil
	}, "sender_wallet_id", senderWalletID, "receiver_wallet_id", receiverWalletID, "amount", amount.String())
}

// recordFailedTransfer stores the rolled back attempt as a failed transfer with its original
// reference. Its own failures are logged only; cause is what the caller sees.
func (c *transferCoordinator) recordFailedTransfer(ctx context.Context, attempt *domain.Transfer, senderUserID int64, cause error) {
	ctx = context.WithoutCancel(ctx)

	now := time.Now().UTC()
	failed := &domain.Transfer{
		SenderWalletID:   attempt.SenderWalletID,
		ReceiverWalletID: attempt.ReceiverWalletID,
		Amount:           attempt.Amount,
		Reference:        attempt.Reference,
		Description:      attempt.Description,
		Status:           domain.StatusFailed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := c.withinTx(ctx, "record failed transfer", func(q repository.DBExecutor) error {
		return c.transferRepo.CreateTransfer(ctx, q, failed)
	})

	event := audit.Event{
		EventType:    audit.EventTypeTransfer,
		Action:       audit.ActionTransferFailed,
		EntityType:   audit.EntityTransfer,
		Reference:    attempt.Reference,
		UserID:       audit.Int64(senderUserID),
		WalletID:     audit.Int64(attempt.SenderWalletID),
		Status:       domain.AuditStatusFailed,
		ErrorMessage: cause.Error(),
		NewValues: map[string]any{
			"sender_wallet_id":   attempt.SenderWalletID,
			"receiver_wallet_id": attempt.ReceiverWalletID,
			"amount":             attempt.Amount.String(),
			"status":             string(domain.StatusFailed),
		},
	}
	if err != nil {
		c.logger.Error("Failed to record failed transfer",
			"error", err,
			"cause", cause,
			"reference", attempt.Reference,
		)
	} else {
		event.EntityID = audit.Int64(failed.ID)
	}
	c.auditLogger.Log(ctx, event)
}

// GetTransfer retrieves a transfer by its ID.
func (c *transferCoordinator) GetTransfer(ctx context.Context, transferID int64) (*domain.Transfer, error) {
	transfer, err := c.transferRepo.GetTransferByID(ctx, c.dbExecutor, transferID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrTransferNotFound
		}
		return nil, fmt.Errorf("get transfer %d: %w", transferID, err)
	}
	return transfer, nil
}

// GetWalletTransfers lists the transfers a wallet took part in, newest first, with their
// direction relative to that wallet.
func (c *transferCoordinator) GetWalletTransfers(ctx context.Context, walletID int64) ([]domain.WalletTransfer, error) {
	if _, err := c.walletRepo.GetWalletByID(ctx, c.dbExecutor, walletID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet transfers: %w", err)
	}
	return walletTransfers(ctx, c.transferRepo, c.dbExecutor, walletID)
}

func walletTransfers(ctx context.Context, transferRepo repository.TransferRepository, q repository.DBExecutor, walletID int64) ([]domain.WalletTransfer, error) {
	transfers, err := transferRepo.GetTransfersByWalletID(ctx, q, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transfers for wallet %d: %w", walletID, err)
	}
	result := make([]domain.WalletTransfer, 0, len(transfers))
	for _, transfer := range transfers {
		result = append(result, domain.WalletTransfer{
			Transfer:  transfer,
			Direction: transfer.DirectionFor(walletID),
		})
	}
	return result, nil
}
