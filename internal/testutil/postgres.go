//go:build integration

// Package testutil starts disposable infrastructure for integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"walletledger/pkg/db"
)

const (
	testDatabase = "walletdb_test"
	testUser     = "test"
	testPassword = "test"
)

// StartPostgres runs a PostgreSQL container and returns a config pointing at it,
// plus a function that terminates the container.
func StartPostgres(ctx context.Context) (db.Config, func(), error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDatabase),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return db.Config{}, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}
	terminate := func() { _ = container.Terminate(context.Background()) }

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		return db.Config{}, nil, fmt.Errorf("failed to resolve container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		terminate()
		return db.Config{}, nil, fmt.Errorf("failed to resolve container port: %w", err)
	}

	return db.Config{
		Host:          host,
		Port:          port.Int(),
		User:          testUser,
		Password:      testPassword,
		DBName:        testDatabase,
		SSLMode:       "disable",
		RunMigrations: true,
	}, terminate, nil
}

// MigratedDB connects to cfg and applies the embedded migrations.
func MigratedDB(cfg db.Config) (*sqlx.DB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database, cfg.DBName, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// Truncate empties every ledger table and resets identities.
func Truncate(ctx context.Context, database *sqlx.DB) error {
	_, err := database.ExecContext(ctx, "TRUNCATE TABLE audit_logs, transactions, transfers, wallets, users RESTART IDENTITY CASCADE")
	return err
}
