package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/config"
)

var seedChartFile string

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the chart of accounts",
	Long: `Seed the ledger with a chart of accounts.

Without flags the built-in standard chart is used. A custom chart can be
supplied as a YAML file with --chart-file. Seeding is idempotent: a ledger
that already contains accounts is left untouched.

Example:
  bookkeeping seed
  bookkeeping seed --chart-file charts/startup.yaml`,
	Run: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedChartFile, "chart-file", "", "YAML chart-of-accounts file (default is the built-in chart)")
}

func runSeed(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	store, closeStore, err := openStore(cfg)
	exitOnError(err, "failed to open store")
	defer closeStore()

	registry := ledger.NewAccountRegistry(store)

	chartFile := seedChartFile
	if chartFile == "" {
		chartFile = cfg.ChartFile
	}

	ctx := cmd.Context()
	if chartFile != "" {
		slog.Info("Seeding chart of accounts from file", "path", chartFile)
		seeds, err := ledger.LoadChartFile(chartFile)
		exitOnError(err, "failed to load chart file")
		exitOnError(registry.SeedChart(ctx, seeds), "failed to seed chart of accounts")
	} else {
		slog.Info("Seeding default chart of accounts")
		exitOnError(registry.SeedDefaultChartOfAccounts(ctx), "failed to seed chart of accounts")
	}

	count, err := store.CountAccounts(ctx)
	exitOnError(err, "failed to count accounts")

	fmt.Printf("Chart of accounts ready: %d accounts\n", count)
	slog.Info("Seed completed", "accounts", count)
}
