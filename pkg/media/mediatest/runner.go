// Package mediatest provides a scripted Runner for tests that must not spawn
// ImageMagick or ffmpeg.
package mediatest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Call is one recorded invocation
type Call struct {
	Name string
	Args []string
}

// Line joins the call into a single command line for assertions
func (c Call) Line() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// HandlerFunc scripts the response of one binary
type HandlerFunc func(args []string) ([]byte, error)

// Runner records every call and answers from per-binary handlers. Binaries
// without a handler succeed with empty output.
type Runner struct {
	mu       sync.Mutex
	calls    []Call
	handlers map[string]HandlerFunc
}

// NewRunner returns an empty scripted runner
func NewRunner() *Runner {
	return &Runner{handlers: make(map[string]HandlerFunc)}
}

// Handle installs the handler for a binary name
func (r *Runner) Handle(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Run implements media.Runner
func (r *Runner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	fn := r.handlers[name]
	r.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(args)
}

// Calls returns a copy of the recorded calls
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded calls of one binary
func (r *Runner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// TouchLast writes a small file at the last argument, the output path of
// convert and of most ffmpeg invocations
func TouchLast(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := args[len(args)-1]
	if out == os.DevNull {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}
	return nil, os.WriteFile(out, []byte("data"), 0o644)
}
