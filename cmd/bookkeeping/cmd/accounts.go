package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/config"
)

var (
	accountsType   string
	accountsActive bool
	accountsSearch string
)

// accountsCmd represents the accounts command.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the chart of accounts",
	Long: `List accounts with their codes, types and running balances.

Example:
  bookkeeping accounts
  bookkeeping accounts --type ASSET
  bookkeeping accounts --active
  bookkeeping accounts --search cash`,
	Run: runAccounts,
}

func init() {
	accountsCmd.Flags().StringVar(&accountsType, "type", "", "filter by account type (ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE, COST_OF_GOODS_SOLD)")
	accountsCmd.Flags().BoolVar(&accountsActive, "active", false, "only show active accounts")
	accountsCmd.Flags().StringVar(&accountsSearch, "search", "", "filter by name substring")
}

func runAccounts(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	store, closeStore, err := openStore(cfg)
	exitOnError(err, "failed to open store")
	defer closeStore()

	registry := ledger.NewAccountRegistry(store)
	ctx := cmd.Context()

	var accounts []models.Account
	switch {
	case accountsSearch != "":
		accounts, err = registry.SearchByName(ctx, accountsSearch)
	case accountsType != "":
		accounts, err = registry.ListByType(ctx, models.AccountType(accountsType))
	case accountsActive:
		accounts, err = registry.ListActive(ctx)
	default:
		accounts, err = registry.ListAll(ctx)
	}
	exitOnError(err, "failed to list accounts")

	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return
	}

	fmt.Printf("%-8s %-40s %-20s %15s  %s\n", "CODE", "NAME", "TYPE", "BALANCE", "ACTIVE")
	for _, acct := range accounts {
		active := "yes"
		if !acct.Active {
			active = "no"
		}
		fmt.Printf("%-8s %-40s %-20s %15s  %s\n", acct.Code, acct.Name, acct.Type, acct.Balance.StringFixed(2), active)
	}

	slog.Debug("Accounts listed", "count", len(accounts))
}
