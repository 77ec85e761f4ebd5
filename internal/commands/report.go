package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
	"github.com/simonhull/firebird-suite/kestrel/pkg/report"
)

// ReportCmd creates the report command
func ReportCmd() *cobra.Command {
	var (
		outPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "report [path]",
		Short: "Write a Revenium integration report for a project",
		Long: `Scan a project and write an integration report with a summary,
recommendations and every finding grouped by provider and file.

Examples:
  kestrel report                       # Markdown report in the project root
  kestrel report --format html         # HTML report
  kestrel report --out -               # Print to stdout`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = settings.ReportFormat()
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			root, err := filepath.Abs(targetArg(args))
			if err != nil {
				return fmt.Errorf("resolving %s: %w", targetArg(args), err)
			}
			_, ws, err := scanPath(cmd.Context(), newEngine(settings.CostEstimates()), root, settings)
			if err != nil {
				return err
			}

			now := time.Now()
			r := report.Build(ws, report.Options{Now: now, Generator: "Kestrel v" + kestrel.Version})
			content, err := r.Render(f)
			if err != nil {
				return err
			}

			if outPath == "-" {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}
			if outPath == "" {
				outPath = filepath.Join(ws.Root, report.FileName(f, now))
			}
			if err := os.WriteFile(outPath, content, 0644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			output.Success("Integration report generated: " + displayPath(outPath))
			output.Step(fmt.Sprintf("%d findings, %d security issues", r.Summary.TotalFindings, r.Summary.SecurityIssues))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, - for stdout (default revenium-integration-report-<ms>.<ext>)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Report format: markdown or html")

	return cmd
}
