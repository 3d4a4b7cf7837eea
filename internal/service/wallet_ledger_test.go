package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"walletledger/internal/audit"
	"walletledger/internal/domain"
	"walletledger/internal/util"
)

type ledgerFixture struct {
	service         WalletLedger
	userRepo        *MockUserRepository
	walletRepo      *MockWalletRepository
	transactionRepo *MockTransactionRepository
	auditLogger     *MockAuditLogger
	dbExecutor      *MockDBExecutor
	tx              *MockTxController
	begun           int
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		userRepo:        new(MockUserRepository),
		walletRepo:      new(MockWalletRepository),
		transactionRepo: new(MockTransactionRepository),
		auditLogger:     new(MockAuditLogger),
		dbExecutor:      new(MockDBExecutor),
		tx:              new(MockTxController),
	}
	beginTx, commitTx, rollbackTx := txFuncs(f.tx, &f.begun)
	f.service = NewWalletLedger(
		new(MockDBBeginner),
		f.dbExecutor,
		f.userRepo,
		f.walletRepo,
		f.transactionRepo,
		f.auditLogger,
		util.DiscardLogger(),
		beginTx,
		commitTx,
		rollbackTx,
	)
	f.tx.On("Rollback").Return(nil).Maybe()
	return f
}

func (f *ledgerFixture) assertExpectations(t *testing.T) {
	mock.AssertExpectationsForObjects(t, f.userRepo, f.walletRepo, f.transactionRepo, f.auditLogger, f.tx)
}

func TestCredit(t *testing.T) {
	walletID := int64(1)

	t.Run("SuccessfulCredit", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		var created *domain.Transaction
		f.tx.On("Commit").Return(nil).Once()
		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "100.00"), nil).Once()
		f.walletRepo.On("UpdateWalletBalance", ctx, mock.Anything, walletID, moneyEq("150.25")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).
			Run(func(args mock.Arguments) { created = args.Get(2).(*domain.Transaction) }).
			Return(nil).Once()
		var logged audit.Event
		f.auditLogger.On("Log", ctx, auditAction(audit.ActionWalletFunded)).Run(captureEvent(&logged)).Once()

		entry, err := f.service.Credit(ctx, walletID, decimal.RequireFromString("50.25"), "  <b>salary</b> ")

		require.NoError(t, err)
		assert.Same(t, created, entry)
		require.NotNil(t, logged.UserID)
		assert.Equal(t, int64(10), *logged.UserID)
		assert.Equal(t, "100.00", logged.OldValues["balance"])
		assert.Equal(t, "150.25", logged.NewValues["balance"])
		assert.Equal(t, domain.TransactionTypeCredit, entry.Type)
		assert.Equal(t, domain.StatusCompleted, entry.Status)
		assert.Equal(t, "50.25", entry.Amount.String())
		assert.Nil(t, entry.TransferID)
		require.NotNil(t, entry.Description)
		assert.Equal(t, "salary", *entry.Description)
		assert.True(t, domain.ValidReference(entry.Reference))
		assert.Equal(t, 1, f.begun)
		f.assertExpectations(t)
	})

	t.Run("RoundsAmountToTwoDecimals", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.tx.On("Commit").Return(nil).Once()
		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "0.00"), nil).Once()
		f.walletRepo.On("UpdateWalletBalance", ctx, mock.Anything, walletID, moneyEq("10.01")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.auditLogger.On("Log", ctx, mock.Anything).Once()

		entry, err := f.service.Credit(ctx, walletID, decimal.RequireFromString("10.005"), "")

		require.NoError(t, err)
		assert.Equal(t, "10.01", entry.Amount.String())
		assert.Nil(t, entry.Description)
		f.assertExpectations(t)
	})

	t.Run("BalanceExceedsMaximum", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "999999999999.00"), nil).Once()

		entry, err := f.service.Credit(ctx, walletID, decimal.NewFromInt(2), "")

		assert.ErrorIs(t, err, util.ErrBalanceExceedsMaximum)
		assert.Nil(t, entry)
		f.walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
		f.tx.AssertNotCalled(t, "Commit")
		f.auditLogger.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("WalletNotFoundTakesPrecedenceOverAmount", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(nil, util.ErrNotFound).Once()

		_, err := f.service.Credit(ctx, walletID, decimal.NewFromInt(-5), "")

		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		f.tx.AssertNotCalled(t, "Commit")
		f.assertExpectations(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		for name, amount := range map[string]string{"zero": "0", "negative": "-1", "rounds to zero": "0.004"} {
			t.Run(name, func(t *testing.T) {
				ctx := context.Background()
				f := newLedgerFixture()
				f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "10.00"), nil).Once()

				_, err := f.service.Credit(ctx, walletID, decimal.RequireFromString(amount), "")

				assert.ErrorIs(t, err, util.ErrInvalidAmount)
				f.walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				f.assertExpectations(t)
			})
		}
	})

	t.Run("AmountExceedsMaximum", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()
		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "0.00"), nil).Once()

		_, err := f.service.Credit(ctx, walletID, decimal.RequireFromString("1000000000000.00"), "")

		assert.ErrorIs(t, err, util.ErrAmountExceedsMaximum)
		f.assertExpectations(t)
	})

	t.Run("JournalFailureRollsBack", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "1.00"), nil).Once()
		f.walletRepo.On("UpdateWalletBalance", ctx, mock.Anything, walletID, moneyEq("2.00")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := f.service.Credit(ctx, walletID, decimal.NewFromInt(1), "")

		assert.ErrorContains(t, err, "connection reset")
		f.tx.AssertNotCalled(t, "Commit")
		f.tx.AssertCalled(t, "Rollback")
		f.assertExpectations(t)
	})
}

func TestDebit(t *testing.T) {
	walletID := int64(4)

	t.Run("SuccessfulDebit", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.tx.On("Commit").Return(nil).Once()
		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "100.00"), nil).Once()
		f.walletRepo.On("UpdateWalletBalance", ctx, mock.Anything, walletID, moneyEq("0.00")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
		var logged audit.Event
		f.auditLogger.On("Log", ctx, auditAction(audit.ActionWalletWithdrawn)).Run(captureEvent(&logged)).Once()

		entry, err := f.service.Debit(ctx, walletID, decimal.NewFromInt(100), "rent")

		require.NoError(t, err)
		require.NotNil(t, logged.UserID)
		assert.Equal(t, int64(40), *logged.UserID)
		assert.Equal(t, "0.00", logged.NewValues["balance"])
		assert.Equal(t, domain.TransactionTypeDebit, entry.Type)
		assert.Equal(t, "100.00", entry.Amount.String())
		f.assertExpectations(t)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "50.00"), nil).Once()

		entry, err := f.service.Debit(ctx, walletID, decimal.NewFromInt(100), "")

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Nil(t, entry)
		f.walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
		f.auditLogger.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("CommitFailure", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.tx.On("Commit").Return(errors.New("serialization failure")).Once()
		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "10.00"), nil).Once()
		f.walletRepo.On("UpdateWalletBalance", ctx, mock.Anything, walletID, moneyEq("5.00")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.service.Debit(ctx, walletID, decimal.NewFromInt(5), "")

		assert.ErrorContains(t, err, "failed to commit transaction")
		assert.Equal(t, util.KindInternal, util.KindOf(err))
		f.auditLogger.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestCreateWallet(t *testing.T) {
	userID := int64(9)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.tx.On("Commit").Return(nil).Once()
		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(nil, util.ErrNotFound).Once()
		f.userRepo.On("UserExists", ctx, mock.Anything, userID).Return(true, nil).Once()
		f.walletRepo.On("CreateWallet", ctx, mock.Anything, mock.AnythingOfType("*domain.Wallet")).
			Run(func(args mock.Arguments) { args.Get(2).(*domain.Wallet).ID = 77 }).
			Return(nil).Once()
		f.auditLogger.On("Log", ctx, auditAction(audit.ActionWalletCreated)).Once()

		wallet, err := f.service.CreateWallet(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, int64(77), wallet.ID)
		assert.Equal(t, userID, wallet.UserID)
		assert.True(t, wallet.Balance.IsZero())
		f.assertExpectations(t)
	})

	t.Run("UserAlreadyHasWallet", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(walletWithBalance(3, "0.00"), nil).Once()

		_, err := f.service.CreateWallet(ctx, userID)

		assert.ErrorIs(t, err, util.ErrUserAlreadyHasWallet)
		assert.Equal(t, util.KindConflict, util.KindOf(err))
		f.userRepo.AssertNotCalled(t, "UserExists", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(nil, util.ErrNotFound).Once()
		f.userRepo.On("UserExists", ctx, mock.Anything, userID).Return(false, nil).Once()

		_, err := f.service.CreateWallet(ctx, userID)

		assert.ErrorIs(t, err, util.ErrUserNotFound)
		f.walletRepo.AssertNotCalled(t, "CreateWallet", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestDeleteWallet(t *testing.T) {
	walletID := int64(12)

	t.Run("DeletesDustBalance", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.tx.On("Commit").Return(nil).Once()
		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "0.01"), nil).Once()
		f.walletRepo.On("DeleteWallet", ctx, mock.Anything, walletID).Return(true, nil).Once()
		f.auditLogger.On("Log", ctx, auditAction(audit.ActionWalletDeleted)).Once()

		deleted, err := f.service.DeleteWallet(ctx, walletID)

		require.NoError(t, err)
		assert.True(t, deleted)
		f.assertExpectations(t)
	})

	t.Run("NonZeroBalance", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(walletWithBalance(walletID, "0.02"), nil).Once()

		deleted, err := f.service.DeleteWallet(ctx, walletID)

		assert.ErrorIs(t, err, util.ErrCannotDeleteNonZeroBalance)
		assert.False(t, deleted)
		f.walletRepo.AssertNotCalled(t, "DeleteWallet", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("WalletNotFound", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.walletRepo.On("GetWalletByIDForUpdate", ctx, mock.Anything, walletID).Return(nil, util.ErrNotFound).Once()

		_, err := f.service.DeleteWallet(ctx, walletID)

		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		f.assertExpectations(t)
	})
}

func TestLedgerReads(t *testing.T) {
	ctx := context.Background()

	t.Run("GetTransactionHistory", func(t *testing.T) {
		f := newLedgerFixture()
		history := []domain.Transaction{{ID: 2}, {ID: 1}}
		f.walletRepo.On("GetWalletByID", ctx, f.dbExecutor, int64(5)).Return(walletWithBalance(5, "1.00"), nil).Once()
		f.transactionRepo.On("GetTransactionsByWalletID", ctx, f.dbExecutor, int64(5), 10, 0).Return(history, int64(2), nil).Once()

		transactions, total, err := f.service.GetTransactionHistory(ctx, 5, 10, 0)

		require.NoError(t, err)
		assert.Equal(t, history, transactions)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, 0, f.begun)
		f.assertExpectations(t)
	})

	t.Run("GetWalletDetails", func(t *testing.T) {
		f := newLedgerFixture()
		wallet := walletWithBalance(5, "75.50")
		f.walletRepo.On("GetWalletByID", ctx, f.dbExecutor, int64(5)).Return(wallet, nil).Once()
		f.transactionRepo.On("GetWalletSummary", ctx, f.dbExecutor, int64(5)).Return(summary("100.00", "24.50"), nil).Once()

		details, err := f.service.GetWalletDetails(ctx, 5)

		require.NoError(t, err)
		assert.Same(t, wallet, details.Wallet)
		assert.Equal(t, "100.00", details.Summary.CreditTotal.String())
		assert.Equal(t, "24.50", details.Summary.DebitTotal.String())
		assert.Equal(t, 0, f.begun)
		f.assertExpectations(t)
	})

	t.Run("GetWalletDetailsUnknownWallet", func(t *testing.T) {
		f := newLedgerFixture()
		f.walletRepo.On("GetWalletByID", ctx, f.dbExecutor, int64(5)).Return(nil, util.ErrNotFound).Once()

		_, err := f.service.GetWalletDetails(ctx, 5)

		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		f.transactionRepo.AssertNotCalled(t, "GetWalletSummary", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("GetTransactionHistoryUnknownWallet", func(t *testing.T) {
		f := newLedgerFixture()
		f.walletRepo.On("GetWalletByID", ctx, f.dbExecutor, int64(5)).Return(nil, util.ErrNotFound).Once()

		_, _, err := f.service.GetTransactionHistory(ctx, 5, 10, 0)

		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		f.assertExpectations(t)
	})

	t.Run("GetTransactionByReferenceMiss", func(t *testing.T) {
		f := newLedgerFixture()
		f.transactionRepo.On("GetTransactionByReference", ctx, f.dbExecutor, "nope").Return(nil, util.ErrNotFound).Once()

		_, err := f.service.GetTransactionByReference(ctx, "nope")

		assert.ErrorIs(t, err, util.ErrTxNotFound)
		assert.Equal(t, util.KindNotFound, util.KindOf(err))
		f.assertExpectations(t)
	})
}
