// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"walletledger/pkg/db" // Import db package for its Config struct
)

// RedisConfig configures the optional audit fan-out. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	LogLevel   string
	DB         db.Config
	Redis      RedisConfig
}

// LoadConfig loads configuration from environment variables, after preloading a .env
// file from the working directory when one exists. Variables already set win over .env.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	dbPort, err := getEnvInt("DB_PORT", 5432) // Default PostgreSQL port
	if err != nil {
		return nil, err
	}
	runMigrations, err := getEnvBool("DB_RUN_MIGRATIONS", true)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DB: db.Config{
			Host:          getEnv("DB_HOST", "localhost"), // Default to localhost for local development
			Port:          dbPort,
			User:          getEnv("DB_USER", "user"),
			Password:      getEnv("DB_PASSWORD", "password"),
			DBName:        getEnv("DB_NAME", "walletdb"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			RunMigrations: runMigrations,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Channel:  getEnv("AUDIT_CHANNEL", "ledger_audit_events"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
