package fixes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Transaction stages file rewrites and commits them together. On failure
// every file already written is restored to its original contents.
type Transaction struct {
	staged    []stagedFile
	written   []snapshot
	committed bool
}

type stagedFile struct {
	path    string
	content []byte
}

// snapshot records a file's state before it was rewritten
type snapshot struct {
	path    string
	content []byte
	mode    fs.FileMode
	existed bool
}

// NewTransaction creates an empty transaction
func NewTransaction() *Transaction {
	return &Transaction{}
}

// Stage queues a rewrite of path (nothing is written until Commit)
func (t *Transaction) Stage(path string, content []byte) {
	t.staged = append(t.staged, stagedFile{path: path, content: content})
}

// Len returns the number of staged files
func (t *Transaction) Len() int {
	return len(t.staged)
}

// Commit writes every staged file, rolling back on the first failure
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	for _, f := range t.staged {
		snap, err := takeSnapshot(f.path)
		if err != nil {
			t.Rollback()
			return err
		}
		if err := os.WriteFile(f.path, f.content, snap.mode); err != nil {
			t.Rollback()
			return fmt.Errorf("failed to write file %s: %w", f.path, err)
		}
		t.written = append(t.written, snap)
	}

	t.committed = true
	return nil
}

// Rollback restores every file written so far. It is a no-op after a
// successful Commit.
func (t *Transaction) Rollback() {
	if t.committed {
		return
	}
	for i := len(t.written) - 1; i >= 0; i-- {
		s := t.written[i]
		if s.existed {
			_ = os.WriteFile(s.path, s.content, s.mode) // best effort
		} else {
			_ = os.Remove(s.path)
		}
	}
	t.written = nil
}

func takeSnapshot(path string) (snapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot{path: path, mode: 0o644}, nil
	}
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return snapshot{path: path, content: content, mode: info.Mode().Perm(), existed: true}, nil
}
