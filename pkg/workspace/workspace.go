// Package workspace owns the scratch directory shared by the scanner and
// encoder and tracks the artifact currently being written, so an interrupted
// build never leaves a truncated file that a later run would treat as done.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is a scratch directory plus the in-progress output registration.
// Close must be called on every exit path.
type Workspace struct {
	dir string

	mu         sync.Mutex
	inProgress string
	closed     bool
}

// New creates a fresh scratch directory under the system temp dir
func New() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "expose-")
	if err != nil {
		return nil, fmt.Errorf("create scratch workspace: %w", err)
	}
	if err := os.Chmod(dir, 0o740); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("chmod scratch workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the scratch directory
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the scratch directory
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Clear empties the scratch directory between gallery items
func (w *Workspace) Clear() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("clear scratch workspace: %w", err)
	}
	var errs []error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(w.dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Begin records path as the artifact an external process is about to write
func (w *Workspace) Begin(path string) {
	w.mu.Lock()
	w.inProgress = path
	w.mu.Unlock()
}

// Done clears the in-progress registration once the writer has exited
func (w *Workspace) Done() {
	w.mu.Lock()
	w.inProgress = ""
	w.mu.Unlock()
}

// InProgress returns the currently registered artifact, if any
func (w *Workspace) InProgress() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inProgress
}

// Close removes a registered partial artifact and the scratch directory.
// It is safe to call more than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if w.inProgress != "" {
		if err := os.Remove(w.inProgress); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove partial output: %w", err))
		}
		w.inProgress = ""
	}
	if err := os.RemoveAll(w.dir); err != nil {
		errs = append(errs, fmt.Errorf("remove scratch workspace: %w", err))
	}
	return errors.Join(errs...)
}
