// Package config provides configuration management for the bookkeeping
// system. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Driver names accepted for LEDGER_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Kafka    KafkaConfig
	// ChartFile optionally points to a YAML chart-of-accounts file used for
	// seeding instead of the built-in chart.
	ChartFile string
	Debug     bool
}

// DatabaseConfig selects and parameterizes the durable store.
type DatabaseConfig struct {
	Driver string // sqlite or postgres
	Path   string // SQLite database file
	URL    string // PostgreSQL connection string
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port string
}

// KafkaConfig configures event publishing; empty Brokers disables it.
type KafkaConfig struct {
	Brokers []string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	debug, err := parseBoolEnv("DEBUG", false)
	if err != nil {
		return nil, fmt.Errorf("invalid DEBUG: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: getEnv("LEDGER_DB_DRIVER", DriverSQLite),
			Path:   getEnv("LEDGER_DB_PATH", "./data/ledger.db"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
		},
		ChartFile: os.Getenv("LEDGER_CHART_FILE"),
		Debug:     debug,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("LEDGER_DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
