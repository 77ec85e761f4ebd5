package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/fixes"
	"github.com/simonhull/firebird-suite/kestrel/pkg/input"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
)

// FixCmd creates the fix command
func FixCmd() *cobra.Command {
	var (
		yes    bool
		dryRun bool
		diff   bool
	)

	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Add Revenium middleware imports where they are missing",
		Long: `Generate and apply fixes for untracked AI provider usage.

Each fix is reviewed interactively unless --yes is given. All accepted
fixes are written together; if any file cannot be written every file is
restored.

Examples:
  kestrel fix app.py              # Review fixes one by one
  kestrel fix src --yes           # Apply everything
  kestrel fix src --dry-run --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			reviewer, err := fixes.NewReviewer(yes, dryRun, diff && !dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !yes && !dryRun && !stdinIsTerminal(cmd) {
				reviewer = fixes.NewReviewerWith(fixes.NewPromptStrategy(input.New(cmd.InOrStdin(), cmd.OutOrStdout())))
			}

			targets, _, err := scanPath(cmd.Context(), newEngine(false), targetArg(args), settings)
			if err != nil {
				return err
			}

			scripts, err := collectFixes(targets, reviewer, dryRun && diff)
			if err != nil {
				return err
			}
			if len(scripts) == 0 {
				output.Info("No fixes to apply")
				return nil
			}

			if err := fixes.ApplyToFiles(cmd.Context(), scripts, fixes.ExecuteOptions{
				DryRun: dryRun,
				Writer: cmd.OutOrStdout(),
			}); err != nil {
				return err
			}

			if dryRun {
				output.Info(fmt.Sprintf("%d fixes would be applied", len(scripts)))
			} else {
				output.Success(fmt.Sprintf("Applied %d fixes", len(scripts)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply every fix without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	cmd.Flags().BoolVar(&diff, "diff", false, "Show each change as a diff")

	return cmd
}

// collectFixes generates at most one script per middleware package and file
// and asks the reviewer about each. Results with no automatic fix are
// reported and skipped.
func collectFixes(targets []scanTarget, reviewer *fixes.Reviewer, preview bool) ([]*fixes.EditScript, error) {
	gen := fixes.NewGenerator()
	var accepted []*fixes.EditScript

	for _, t := range targets {
		offered := make(map[string]bool) // middleware packages already reviewed for this file
		for _, r := range t.results {
			script, err := gen.Generate(r, t.doc)
			if errors.Is(err, fixes.ErrNoFix) {
				output.Verbose(fmt.Sprintf("%s:%d: %v", displayPath(t.doc.URI), r.Line(), err))
				if r.Pattern.SecurityRisk {
					output.Warn(fmt.Sprintf("%s:%d: %s (fix by hand)", displayPath(t.doc.URI), r.Line(), r.Pattern.Message))
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			if offered[script.Package] {
				continue
			}
			offered[script.Package] = true

			if preview {
				if err := printPreview(script, t.doc); err != nil {
					return nil, err
				}
			}

			decision, err := reviewer.Review(script, t.doc)
			if err != nil {
				return nil, err
			}
			logger.Debug("Reviewed fix", logger.F("file", t.doc.URI), logger.F("pattern", script.PatternID), logger.F("decision", decision.String()))

			switch decision {
			case fixes.Apply:
				accepted = append(accepted, script)
			case fixes.Cancel:
				output.Info("Cancelled, no files were changed")
				return nil, nil
			}
		}
	}
	return accepted, nil
}

func printPreview(script *fixes.EditScript, doc *detection.Document) error {
	diff, err := fixes.Preview(script, doc, fixes.PreviewOptions{Color: true})
	if err != nil {
		return err
	}
	output.Header(script.Title)
	output.Plain(diff)
	return nil
}

// stdinIsTerminal reports whether the command reads from an interactive
// terminal. Replaced input (tests, pipes) never is.
func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
