package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/cost"
	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// ScanCmd creates the scan command
func ScanCmd() *cobra.Command {
	var (
		filter string
		asJSON bool
		costs  bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Report AI provider usage without Revenium tracking",
		Long: `Scan a file or directory for AI provider SDK usage.

Examples:
  kestrel scan                     # Scan the current directory
  kestrel scan app.py              # Scan one file
  kestrel scan --filter security   # Only hardcoded keys and other risks
  kestrel scan --json --costs      # Machine readable, with spend estimates`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("filter") {
				if err := settings.Set(config.KeyDetectionFilter, filter); err != nil {
					return err
				}
			}
			withCosts := costs || settings.CostEstimates()

			targets, ws, err := scanPath(cmd.Context(), newEngine(withCosts), targetArg(args), settings)
			if err != nil {
				return err
			}

			if asJSON {
				return writeScanJSON(cmd, ws)
			}
			printScan(targets, ws, withCosts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Result filter: all, integration, security, imports")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&costs, "costs", false, "Attach monthly spend estimates")

	return cmd
}

func printScan(targets []scanTarget, ws *detection.WorkspaceResult, costs bool) {
	for _, t := range targets {
		output.Header(displayPath(t.doc.URI))
		for _, r := range t.results {
			msg := r.Pattern.Message
			if costs && r.Cost != nil {
				msg += " (" + cost.FormatDisplay(*r.Cost) + ")"
			}
			output.Finding(displayPath(t.doc.URI), r.Line(), r.Pattern.Severity, msg)
			if r.Suggestion != "" {
				output.Verbose("fix: " + r.Suggestion)
			}
		}
	}

	for _, path := range ws.Skipped {
		output.Warn("Skipped unreadable file: " + displayPath(path))
	}
	if ws.Truncated {
		output.Warn(fmt.Sprintf("Stopped after %d files", detection.MaxWorkspaceFiles))
	}

	total := ws.TotalFindings()
	if total == 0 {
		output.Success(fmt.Sprintf("No untracked AI usage in %d files", ws.FilesAnalyzed))
		return
	}
	output.Info(fmt.Sprintf("%d findings in %d of %d files", total, len(ws.Files), ws.FilesAnalyzed))
	output.Step("Run 'kestrel fix <path>' to add Revenium middleware")
}

type jsonFinding struct {
	File       string            `json:"file"`
	Line       int               `json:"line"`
	Column     int               `json:"column"`
	Pattern    string            `json:"pattern"`
	Provider   patterns.Provider `json:"provider"`
	Scenario   patterns.Scenario `json:"scenario"`
	Severity   patterns.Severity `json:"severity"`
	Message    string            `json:"message"`
	Match      string            `json:"match"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cost       *cost.Estimate    `json:"cost,omitempty"`
}

type jsonScan struct {
	RunID         string        `json:"runId,omitempty"`
	Root          string        `json:"root"`
	FilesAnalyzed int           `json:"filesAnalyzed"`
	Skipped       []string      `json:"skipped,omitempty"`
	Truncated     bool          `json:"truncated,omitempty"`
	Findings      []jsonFinding `json:"findings"`
}

func writeScanJSON(cmd *cobra.Command, ws *detection.WorkspaceResult) error {
	out := jsonScan{
		RunID:         ws.RunID,
		Root:          ws.Root,
		FilesAnalyzed: ws.FilesAnalyzed,
		Skipped:       ws.Skipped,
		Truncated:     ws.Truncated,
		Findings:      []jsonFinding{},
	}
	for _, path := range ws.Order {
		for _, r := range ws.Files[path] {
			out.Findings = append(out.Findings, jsonFinding{
				File:       path,
				Line:       r.Line(),
				Column:     r.Range.Start.Character + 1,
				Pattern:    r.Pattern.ID,
				Provider:   r.Pattern.Provider,
				Scenario:   r.Pattern.Scenario,
				Severity:   r.Pattern.Severity,
				Message:    r.Pattern.Message,
				Match:      strings.TrimSpace(r.Match),
				Suggestion: r.Suggestion,
				Cost:       r.Cost,
			})
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}
