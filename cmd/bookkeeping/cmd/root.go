// Package cmd provides CLI commands for the bookkeeping tool.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage/postgres"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage/sqlite"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/config"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/db"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bookkeeping",
	Short: "Manage a double-entry general ledger",
	Long: `bookkeeping is a CLI tool for maintaining a double-entry general
ledger: a chart of accounts, balanced journal transactions and the
standard financial statements derived from them.

It supports:
- Seeding a default or YAML-defined chart of accounts
- Posting balanced journal transactions
- Listing accounts and transactions
- Trial balance, balance sheet and income statement reports

Example:
  bookkeeping seed
  bookkeeping post --date 2026-01-15 --description "Initial capital" \
    --debit 1000:50000000 --credit 3000:50000000
  bookkeeping trial-balance`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(trialBalanceCmd)
	rootCmd.AddCommand(balanceSheetCmd)
	rootCmd.AddCommand(incomeStatementCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// openStore builds the configured LedgerStore and returns its closer.
func openStore(cfg *config.Config) (storage.LedgerStore, func() error, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		handle, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := handle.Ping(); err != nil {
			handle.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store := postgres.New(handle)
		if err := store.InitializeSchema(context.Background()); err != nil {
			handle.Close()
			return nil, nil, err
		}
		return store, handle.Close, nil
	default:
		conn, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.New(conn), conn.Close, nil
	}
}
