package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// ProvidersCmd creates the providers command
func ProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers with Revenium middleware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			reg := patterns.NewRegistry()

			var rows [][]string
			for _, cfg := range patterns.ConfiguredProviders() {
				py, _ := patterns.MiddlewarePackage(cfg.Name, patterns.LanguagePython)
				node, _ := patterns.MiddlewarePackage(cfg.Name, patterns.LanguageJavaScript)
				enabled := "yes"
				if !settings.ProviderEnabled(cfg.Name) {
					enabled = "no"
				}
				rows = append(rows, []string{
					output.Provider(cfg.Name),
					string(cfg.Name),
					orDash(py),
					orDash(node),
					cfg.FixTemplate.String(),
					fmt.Sprint(len(reg.ByProvider(cfg.Name))),
					enabled,
				})
			}

			output.Table([]string{"PROVIDER", "ID", "PYTHON", "NODE", "TEMPLATE", "RULES", "ENABLED"}, rows)
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
