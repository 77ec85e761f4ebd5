package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel/pkg/cost"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
)

// CostCmd creates the cost command
func CostCmd() *cobra.Command {
	var tokens int

	cmd := &cobra.Command{
		Use:   "cost <provider> [model]",
		Short: "Estimate monthly spend for a provider and model",
		Long: `Estimate monthly spend from the built-in price table.

Examples:
  kestrel cost openai gpt-4
  kestrel cost anthropic claude-3-opus --tokens 2000000
  kestrel cost openai              # List priced models`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if len(args) == 1 {
				return listModels(provider)
			}

			model := args[1]
			est := cost.EstimateCost(provider, model, tokens)
			if est.Model != model {
				output.Warn(fmt.Sprintf("%s is not priced for %s, using %s", model, provider, est.Model))
			}

			output.Header(fmt.Sprintf("%s %s", provider, est.Model))
			output.Step(fmt.Sprintf("Price: $%.4f per 1K tokens", est.Per1000Tokens))
			output.Step(fmt.Sprintf("Volume: %d tokens/month", est.TokensPerMonth))
			output.Step(fmt.Sprintf("Estimate: %s (%s spend)", cost.FormatDisplay(est), cost.CategorizeSpend(est.MonthlyEstimate)))
			if est.OptimizationPotential > 0 {
				output.Step(fmt.Sprintf("Potential savings: $%.2f/month", est.OptimizationPotential))
			}
			if s, ok := cost.OptimizationSuggestion(provider, est.Model); ok {
				output.Info(s)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tokens, "tokens", "t", cost.DefaultTokensPerMonth, "Tokens per month")

	return cmd
}

func listModels(provider string) error {
	models := cost.Models(provider)
	if len(models) == 0 {
		return fmt.Errorf("no pricing for provider %q (known: %v)", provider, cost.Providers())
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{m.Name, fmt.Sprintf("$%.4f", m.Per1000Tokens), string(m.Category)})
	}
	output.Table([]string{"MODEL", "PER 1K TOKENS", "CATEGORY"}, rows)
	return nil
}
