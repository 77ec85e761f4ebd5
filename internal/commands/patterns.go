package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

type patternDoc struct {
	ID          string   `yaml:"id"`
	Provider    string   `yaml:"provider"`
	Scenario    string   `yaml:"scenario"`
	Severity    string   `yaml:"severity"`
	Languages   []string `yaml:"languages"`
	Message     string   `yaml:"message"`
	Expr        string   `yaml:"expr"`
	FixGuidance string   `yaml:"fixGuidance,omitempty"`
	CostImpact  string   `yaml:"costImpact,omitempty"`
}

// PatternsCmd creates the patterns command
func PatternsCmd() *cobra.Command {
	var (
		provider string
		critical bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List detection rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := patterns.NewRegistry()

			list := reg.Find(func(p patterns.Pattern) bool {
				if provider != "" && p.Provider != patterns.Provider(provider) {
					return false
				}
				return !critical || p.IsCritical()
			})

			switch format {
			case "yaml":
				docs := make([]patternDoc, 0, len(list))
				for _, p := range list {
					docs = append(docs, toPatternDoc(p))
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(docs)
			case "table":
				rows := make([][]string, 0, len(list))
				for _, p := range list {
					rows = append(rows, []string{p.ID, string(p.Provider), string(p.Scenario), string(p.Severity), joinLanguages(p.Languages)})
				}
				output.Table([]string{"ID", "PROVIDER", "SCENARIO", "SEVERITY", "LANGUAGES"}, rows)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Only rules for this provider")
	cmd.Flags().BoolVar(&critical, "critical", false, "Only errors and security risks")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")

	return cmd
}

func toPatternDoc(p patterns.Pattern) patternDoc {
	langs := make([]string, 0, len(p.Languages))
	for _, l := range p.Languages {
		langs = append(langs, string(l))
	}
	return patternDoc{
		ID:          p.ID,
		Provider:    string(p.Provider),
		Scenario:    string(p.Scenario),
		Severity:    string(p.Severity),
		Languages:   langs,
		Message:     p.Message,
		Expr:        p.Expr.String(),
		FixGuidance: p.FixGuidance,
		CostImpact:  string(p.CostImpact),
	}
}

func joinLanguages(langs []patterns.Language) string {
	parts := make([]string, 0, len(langs))
	for _, l := range langs {
		parts = append(parts, string(l))
	}
	return strings.Join(parts, ",")
}
