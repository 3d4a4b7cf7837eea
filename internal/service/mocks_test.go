package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"walletledger/internal/audit"
	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) UserExists(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, newBalance domain.Money) error {
	args := m.Called(ctx, q, walletID, newBalance)
	return args.Error(0)
}

func (m *MockWalletRepository) DeleteWallet(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) CreateTransactions(ctx context.Context, q repository.DBExecutor, transactions []*domain.Transaction) error {
	args := m.Called(ctx, q, transactions)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) ListTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, q, walletID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, q, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionsByTransferID(ctx context.Context, q repository.DBExecutor, transferID int64, status domain.Status) ([]domain.Transaction, error) {
	args := m.Called(ctx, q, transferID, status)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetWalletSummary(ctx context.Context, q repository.DBExecutor, walletID int64) (domain.TransactionSummary, error) {
	args := m.Called(ctx, q, walletID)
	return args.Get(0).(domain.TransactionSummary), args.Error(1)
}

// MockTransferRepository is a mock implementation of repository.TransferRepository.
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) CreateTransfer(ctx context.Context, q repository.DBExecutor, transfer *domain.Transfer) error {
	args := m.Called(ctx, q, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) UpdateTransferStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.Status) error {
	args := m.Called(ctx, q, id, status)
	return args.Error(0)
}

func (m *MockTransferRepository) GetTransferByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transfer, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferRepository) GetTransfersByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) ([]domain.Transfer, error) {
	args := m.Called(ctx, q, walletID)
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

// MockAuditLogger is a mock implementation of audit.Logger.
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implicitly implements repository.DBExecutor for testing purposes
// by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor // Embed MockDBExecutor to satisfy repository.DBExecutor interface
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// txFuncs returns injected transaction functions backed by tx and counts how many
// storage transactions were begun.
func txFuncs(tx *MockTxController, begun *int) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	return func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			*begun++
			return tx, nil
		},
		func(db.TxController) error {
			return tx.Commit()
		},
		func(db.TxController) {
			_ = tx.Rollback()
		}
}

// moneyEq matches a domain.Money argument by value.
func moneyEq(s string) interface{} {
	want := domain.MustMoney(s)
	return mock.MatchedBy(func(m domain.Money) bool { return m.Equal(want) })
}

// auditAction matches an audit.Event argument by action.
func auditAction(action string) interface{} {
	return mock.MatchedBy(func(e audit.Event) bool { return e.Action == action })
}

// captureEvent stores the audit.Event passed to Log into dst.
func captureEvent(dst *audit.Event) func(mock.Arguments) {
	return func(args mock.Arguments) { *dst = args.Get(1).(audit.Event) }
}

func walletWithBalance(id int64, balance string) *domain.Wallet {
	return &domain.Wallet{ID: id, UserID: id * 10, Balance: domain.MustMoney(balance)}
}
