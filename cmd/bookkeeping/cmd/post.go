package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/config"
)

var (
	postDate        string
	postDescription string
	postReference   string
	postDebits      []string
	postCredits     []string
)

// postCmd represents the post command.
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced journal transaction",
	Long: `Post a journal transaction to the ledger.

Each --debit and --credit flag takes CODE:AMOUNT or CODE:AMOUNT:MEMO,
where CODE is an account code from the chart of accounts. The debit
total must equal the credit total or the posting is rejected.

Example:
  bookkeeping post --date 2026-01-15 --description "Initial capital" \
    --debit 1100:50000000 --credit 3100:50000000

  bookkeeping post --description "Office supplies" \
    --debit "5500:120.50:stationery" --credit 1100:120.50`,
	Run: runPost,
}

func init() {
	postCmd.Flags().StringVar(&postDate, "date", "", "transaction date, YYYY-MM-DD (default today)")
	postCmd.Flags().StringVar(&postDescription, "description", "", "transaction description (required)")
	postCmd.Flags().StringVar(&postReference, "reference", "", "external reference, e.g. an invoice number")
	postCmd.Flags().StringArrayVar(&postDebits, "debit", nil, "debit line as CODE:AMOUNT[:MEMO], repeatable")
	postCmd.Flags().StringArrayVar(&postCredits, "credit", nil, "credit line as CODE:AMOUNT[:MEMO], repeatable")
	_ = postCmd.MarkFlagRequired("description")
}

func runPost(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	date := time.Now()
	if postDate != "" {
		date, err = time.Parse(models.DateLayout, postDate)
		exitOnError(err, "invalid --date, expected YYYY-MM-DD")
	}

	store, closeStore, err := openStore(cfg)
	exitOnError(err, "failed to open store")
	defer closeStore()

	registry := ledger.NewAccountRegistry(store)
	manager := ledger.NewTransactionManager(store, nil)
	ctx := cmd.Context()

	var lines []ledger.Line
	for _, spec := range postDebits {
		line, err := parseLineSpec(ctx, registry, spec, true)
		exitOnError(err, "invalid --debit")
		lines = append(lines, line)
	}
	for _, spec := range postCredits {
		line, err := parseLineSpec(ctx, registry, spec, false)
		exitOnError(err, "invalid --credit")
		lines = append(lines, line)
	}

	txn, err := manager.Post(ctx, postDescription, date, postReference, lines)
	exitOnError(err, "failed to post transaction")

	fmt.Printf("Posted %s on %s: %s (%d entries, total %s)\n",
		txn.Number, txn.Date.Format(models.DateLayout), txn.Description,
		len(txn.Entries), txn.TotalAmount.StringFixed(2))

	slog.Info("Transaction posted", "number", txn.Number, "id", txn.ID)
}

// parseLineSpec parses CODE:AMOUNT[:MEMO] into a journal line, resolving the
// account code against the chart of accounts.
func parseLineSpec(ctx context.Context, registry *ledger.AccountRegistry, spec string, isDebit bool) (ledger.Line, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return ledger.Line{}, fmt.Errorf("%q is not CODE:AMOUNT[:MEMO]", spec)
	}

	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return ledger.Line{}, fmt.Errorf("invalid amount %q: %w", parts[1], err)
	}

	account, err := registry.FindByCode(ctx, parts[0])
	if err != nil {
		return ledger.Line{}, err
	}

	line := ledger.Line{AccountID: account.ID}
	if len(parts) == 3 {
		line.Description = parts[2]
	}
	if isDebit {
		line.Debit = amount
	} else {
		line.Credit = amount
	}
	return line, nil
}
