// internal/service/wallet_ledger.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"walletledger/internal/audit"
	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/internal/util"
	"walletledger/pkg/db"
)

// WalletLedger defines single-wallet balance mutations and lifecycle.
type WalletLedger interface {
	CreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	Credit(ctx context.Context, walletID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Debit(ctx context.Context, walletID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	DeleteWallet(ctx context.Context, walletID int64) (bool, error)
	GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error)
	GetWalletDetails(ctx context.Context, walletID int64) (*domain.WalletDetails, error)
	GetTransactionHistory(ctx context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int64, error)
	GetTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error)
}

// walletLedger implements the WalletLedger interface.
type walletLedger struct {
	txRunner
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	auditLogger     audit.Logger
	logger          *slog.Logger
}

// NewWalletLedger creates a new instance of WalletLedger.
func NewWalletLedger(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	auditLogger audit.Logger,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletLedger {
	return &walletLedger{
		txRunner: txRunner{
			dbBeginner: dbBeginner,
			beginTx:    beginTx,
			commitTx:   commitTx,
			rollbackTx: rollbackTx,
		},
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		auditLogger:     auditLogger,
		logger:          logger,
	}
}

// lockWallet takes the row lock on walletID for the rest of q's transaction.
func lockWallet(ctx context.Context, walletRepo repository.WalletRepository, q repository.DBExecutor, walletID int64) (*domain.Wallet, error) {
	wallet, err := walletRepo.GetWalletByIDForUpdate(ctx, q, walletID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet %d: %w", walletID, err)
	}
	return wallet, nil
}

// CreateWallet opens a zero-balance wallet for an existing user without one.
func (s *walletLedger) CreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return observe(ctx, s.logger, "create_wallet", func() (*domain.Wallet, error) {
		var wallet *domain.Wallet
		err := s.withinTx(ctx, "create wallet", func(q repository.DBExecutor) error {
			_, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, q, userID)
			if err == nil {
				return util.ErrUserAlreadyHasWallet
			}
			if !errors.Is(err, util.ErrNotFound) {
				return fmt.Errorf("create wallet: failed to check existing wallet: %w", err)
			}

			exists, err := s.userRepo.UserExists(ctx, q, userID)
			if err != nil {
				return fmt.Errorf("create wallet: %w", err)
			}
			if !exists {
				return util.ErrUserNotFound
			}

			wallet = domain.NewWallet(userID)
			return s.walletRepo.CreateWallet(ctx, q, wallet)
		})
		if err != nil {
			return nil, err
		}

		s.auditLogger.Log(ctx, audit.Event{
			EventType:  audit.EventTypeWallet,
			Action:     audit.ActionWalletCreated,
			EntityType: audit.EntityWallet,
			EntityID:   audit.Int64(wallet.ID),
			UserID:     audit.Int64(userID),
			WalletID:   audit.Int64(wallet.ID),
			NewValues:  map[string]any{"balance": wallet.Balance.String()},
		})
		return wallet, nil
	}, "user_id", userID)
}

// Credit adds amount to the wallet and appends a credit entry.
func (s *walletLedger) Credit(ctx context.Context, walletID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return observe(ctx, s.logger, "credit", func() (*domain.Transaction, error) {
		var (
			entry      *domain.Transaction
			userID     int64
			oldBalance domain.Money
			newBalance domain.Money
		)
		err := s.withinTx(ctx, "credit", func(q repository.DBExecutor) error {
			wallet, err := lockWallet(ctx, s.walletRepo, q, walletID)
			if err != nil {
				return err
			}
			credit, err := domain.NewAmount(amount)
			if err != nil {
				return err
			}

			userID = wallet.UserID
			oldBalance = wallet.Balance
			newBalance = wallet.Balance.Add(credit)
			if newBalance.GreaterThan(domain.MaxAmount) {
				return util.ErrBalanceExceedsMaximum
			}
			if err := s.walletRepo.UpdateWalletBalance(ctx, q, walletID, newBalance); err != nil {
				return fmt.Errorf("credit: failed to update wallet balance: %w", err)
			}

			entry = domain.NewTransaction(walletID, domain.TransactionTypeCredit, credit, domain.SanitizeDescription(description), nil)
			if err := s.transactionRepo.CreateTransaction(ctx, q, entry); err != nil {
				return fmt.Errorf("credit: failed to create transaction: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.auditMovement(ctx, audit.ActionWalletFunded, entry, userID, oldBalance, newBalance)
		return entry, nil
	}, "wallet_id", walletID, "amount", amount.String())
}

// Debit removes amount from the wallet and appends a debit entry.
func (s *walletLedger) Debit(ctx context.Context, walletID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return observe(ctx, s.logger, "debit", func() (*domain.Transaction, error) {
		var (
			entry      *domain.Transaction
			userID     int64
			oldBalance domain.Money
			newBalance domain.Money
		)
		err := s.withinTx(ctx, "debit", func(q repository.DBExecutor) error {
			wallet, err := lockWallet(ctx, s.walletRepo, q, walletID)
			if err != nil {
				return err
			}
			debit, err := domain.NewAmount(amount)
			if err != nil {
				return err
			}
			if wallet.Balance.LessThan(debit) {
				return util.ErrInsufficientFunds
			}

			userID = wallet.UserID
			oldBalance = wallet.Balance
			newBalance = wallet.Balance.Sub(debit)
			if newBalance.IsNegative() {
				return util.ErrInsufficientFunds
			}
			if err := s.walletRepo.UpdateWalletBalance(ctx, q, walletID, newBalance); err != nil {
				return fmt.Errorf("debit: failed to update wallet balance: %w", err)
			}

			entry = domain.NewTransaction(walletID, domain.TransactionTypeDebit, debit, domain.SanitizeDescription(description), nil)
			if err := s.transactionRepo.CreateTransaction(ctx, q, entry); err != nil {
				return fmt.Errorf("debit: failed to create transaction: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.auditMovement(ctx, audit.ActionWalletWithdrawn, entry, userID, oldBalance, newBalance)
		return entry, nil
	}, "wallet_id", walletID, "amount", amount.String())
}

func (s *walletLedger) auditMovement(ctx context.Context, action string, entry *domain.Transaction, userID int64, oldBalance, newBalance domain.Money) {
	s.auditLogger.Log(ctx, audit.Event{
		EventType:  audit.EventTypeTransaction,
		Action:     action,
		EntityType: audit.EntityTransaction,
		EntityID:   audit.Int64(entry.ID),
		Reference:  entry.Reference,
		UserID:     audit.Int64(userID),
		WalletID:   audit.Int64(entry.WalletID),
		OldValues:  map[string]any{"balance": oldBalance.String()},
		NewValues:  map[string]any{"balance": newBalance.String(), "amount": entry.Amount.String()},
	})
}

// DeleteWallet removes a wallet whose balance is at most 0.01. Its journal entries stay.
func (s *walletLedger) DeleteWallet(ctx context.Context, walletID int64) (bool, error) {
	return observe(ctx, s.logger, "delete_wallet", func() (bool, error) {
		var (
			wallet  *domain.Wallet
			deleted bool
		)
		err := s.withinTx(ctx, "delete wallet", func(q repository.DBExecutor) error {
			var err error
			wallet, err = lockWallet(ctx, s.walletRepo, q, walletID)
			if err != nil {
				return err
			}
			if !wallet.CanBeDeleted() {
				return util.ErrCannotDeleteNonZeroBalance
			}
			deleted, err = s.walletRepo.DeleteWallet(ctx, q, walletID)
			if err != nil {
				return fmt.Errorf("delete wallet: %w", err)
			}
			return nil
		})
		if err != nil {
			return false, err
		}

		s.auditLogger.Log(ctx, audit.Event{
			EventType:  audit.EventTypeWallet,
			Action:     audit.ActionWalletDeleted,
			EntityType: audit.EntityWallet,
			EntityID:   audit.Int64(walletID),
			UserID:     audit.Int64(wallet.UserID),
			WalletID:   audit.Int64(walletID),
			OldValues:  map[string]any{"balance": wallet.Balance.String()},
		})
		return deleted, nil
	}, "wallet_id", walletID)
}

// GetWallet retrieves a wallet without locking it.
func (s *walletLedger) GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: failed to get wallet %d: %w", walletID, err)
	}
	return wallet, nil
}

// GetWalletDetails returns the wallet with its completed credit and debit totals.
func (s *walletLedger) GetWalletDetails(ctx context.Context, walletID int64) (*domain.WalletDetails, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	summary, err := s.transactionRepo.GetWalletSummary(ctx, s.dbExecutor, walletID)
	if err != nil {
		return nil, fmt.Errorf("get wallet details: failed to summarize wallet %d: %w", walletID, err)
	}
	return &domain.WalletDetails{Wallet: wallet, Summary: summary}, nil
}

// GetTransactionHistory retrieves a paginated list of transactions for a specific wallet.
func (s *walletLedger) GetTransactionHistory(ctx context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	// First, check if the wallet exists
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, 0, err
	}

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// GetTransactionByReference looks a journal entry up by its reference.
func (s *walletLedger) GetTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransactionByReference(ctx, s.dbExecutor, reference)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrTxNotFound
		}
		return nil, fmt.Errorf("get transaction %s: %w", reference, err)
	}
	return transaction, nil
}
