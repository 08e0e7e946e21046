package ledger

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// chartFile is the YAML layout of a chart-of-accounts file:
//
//	accounts:
//	  - code: "1100"
//	    name: Cash
//	    type: asset
//	    description: Cash and cash equivalents
type chartFile struct {
	Accounts []chartFileAccount `yaml:"accounts"`
}

type chartFileAccount struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// chartFileTypes maps the YAML type labels to account types.
var chartFileTypes = map[string]models.AccountType{
	"asset":              models.Asset,
	"liability":          models.Liability,
	"equity":             models.Equity,
	"revenue":            models.Revenue,
	"income":             models.Revenue,
	"expense":            models.Expense,
	"cost_of_goods_sold": models.CostOfGoodsSold,
	"cogs":               models.CostOfGoodsSold,
}

// LoadChartFile reads a YAML chart-of-accounts file and returns the seeds it
// describes, for use with AccountRegistry.SeedChart.
func LoadChartFile(path string) ([]AccountSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}

	var file chartFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chart file: %w", err)
	}

	seeds := make([]AccountSeed, 0, len(file.Accounts))
	for i, acct := range file.Accounts {
		accountType, ok := chartFileTypes[strings.ToLower(strings.TrimSpace(acct.Type))]
		if !ok {
			return nil, fmt.Errorf("chart file account %d (%s): unknown type %q", i+1, acct.Code, acct.Type)
		}
		seeds = append(seeds, AccountSeed{
			Code:        acct.Code,
			Name:        acct.Name,
			Type:        accountType,
			Description: acct.Description,
		})
	}
	return seeds, nil
}
