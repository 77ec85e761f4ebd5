package fixes

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
)

// Operation is one validated change to the workspace.
//
// Validate checks that the operation would succeed without touching disk.
// Execute stages the change into tx; nothing is written until the
// transaction commits.
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context, tx *Transaction) error
	Description() string
}

// ApplyEditsOp applies edit scripts to one file
type ApplyEditsOp struct {
	Path    string
	Scripts []*EditScript

	result []byte
	edits  int
}

// Validate reads the file and applies every script in memory
func (op *ApplyEditsOp) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := os.ReadFile(op.Path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", op.Path, err)
	}

	merged := MergeScripts(op.Path, op.Scripts)
	after, err := merged.Apply(detection.NewDocument(op.Path, 0, string(content)))
	if err != nil {
		return fmt.Errorf("%s: %w", op.Path, err)
	}
	op.result = []byte(after)
	op.edits = len(merged.Edits)
	return nil
}

// Execute stages the rewritten file
func (op *ApplyEditsOp) Execute(ctx context.Context, tx *Transaction) error {
	if op.result == nil {
		return fmt.Errorf("%s: operation not validated", op.Path)
	}
	tx.Stage(op.Path, op.result)
	return nil
}

func (op *ApplyEditsOp) Description() string {
	return fmt.Sprintf("Patch %s (%d edits)", op.Path, op.edits)
}

// Result returns the validated file contents
func (op *ApplyEditsOp) Result() []byte {
	return op.result
}

// MergeScripts combines scripts for one file into a single script,
// dropping duplicate insertions such as the same middleware import
// generated for two findings.
func MergeScripts(uri string, scripts []*EditScript) *EditScript {
	merged := &EditScript{URI: uri, Title: "Add Revenium middleware"}
	for _, s := range scripts {
		for _, e := range s.Edits {
			if !slices.ContainsFunc(merged.Edits, func(m Edit) bool { return m == e }) {
				merged.Edits = append(merged.Edits, e)
			}
		}
	}
	if len(scripts) == 1 {
		merged.Title = scripts[0].Title
		merged.PatternID = scripts[0].PatternID
		merged.Provider = scripts[0].Provider
	}
	return merged
}

// ExecuteOptions configures how fixes are written
type ExecuteOptions struct {
	DryRun bool
	Writer io.Writer // defaults to os.Stdout
}

// ApplyToFiles groups scripts by file and applies them in one transaction.
// Every file is validated before any is written.
func ApplyToFiles(ctx context.Context, scripts []*EditScript, opts ExecuteOptions) error {
	var ops []Operation
	byPath := make(map[string]*ApplyEditsOp)
	for _, s := range scripts {
		op, ok := byPath[s.URI]
		if !ok {
			op = &ApplyEditsOp{Path: s.URI}
			byPath[s.URI] = op
			ops = append(ops, op)
		}
		op.Scripts = append(op.Scripts, s)
	}
	return Execute(ctx, ops, opts)
}

// Execute validates all operations, then stages and commits them
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if opts.DryRun {
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil
	}

	tx := NewTransaction()
	for _, op := range ops {
		if err := op.Execute(ctx, tx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	for _, op := range ops {
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return nil
}
