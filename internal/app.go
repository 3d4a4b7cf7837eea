// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "walletledger/internal/api"
	"walletledger/internal/api/handler"
	"walletledger/internal/audit"
	"walletledger/internal/config"
	"walletledger/internal/repository"
	"walletledger/internal/repository/postgres"
	"walletledger/internal/service"
	"walletledger/internal/util"
	"walletledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	TransferRepository    repository.TransferRepository
	AuditRepository       repository.AuditRepository

	// Services
	AuditLogger         audit.Logger
	WalletLedger        service.WalletLedger
	TransferCoordinator service.TransferCoordinator
	IntegrityVerifier   service.IntegrityVerifier

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.NewLogger("info")}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	app.Logger = util.NewLogger(cfg.LogLevel)
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if app.Config.DB.RunMigrations {
		if err := db.RunMigrations(app.DB, app.Config.DB.DBName, app.Logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.TransferRepository = postgres.NewTransferRepository()
	app.AuditRepository = postgres.NewAuditRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize the audit sink, fanning out over Redis when configured
	var publisher audit.Publisher
	if app.Config.Redis.Addr != "" {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     app.Config.Redis.Addr,
			Password: app.Config.Redis.Password,
			DB:       app.Config.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := app.Redis.Ping(pingCtx).Err(); err != nil {
			app.Logger.Warn("Redis unreachable, audit events will not be published", "addr", app.Config.Redis.Addr, "error", err)
		} else {
			app.Logger.Info("Redis connection established.", "channel", app.Config.Redis.Channel)
		}
		publisher = audit.NewRedisPublisher(app.Redis, app.Config.Redis.Channel)
	}
	app.AuditLogger = audit.NewService(app.AuditRepository, app.DB, publisher, app.Logger)

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.WalletLedger = service.NewWalletLedger(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.WalletRepository,
		app.TransactionRepository,
		app.AuditLogger,
		app.Logger,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.TransferCoordinator = service.NewTransferCoordinator(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.TransferRepository,
		app.AuditLogger,
		app.Logger,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.IntegrityVerifier = service.NewIntegrityVerifier(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.TransferRepository,
		app.AuditLogger,
		app.Logger,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.WalletLedger, app.TransferCoordinator, app.Logger)
	transferHandler := handler.NewTransferHandler(app.TransferCoordinator, app.Logger)
	ledgerHandler := handler.NewLedgerHandler(app.IntegrityVerifier, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, transferHandler, ledgerHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis client", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
