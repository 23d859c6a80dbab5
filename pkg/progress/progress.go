// Package progress reports phase progress: a bar on a terminal, periodic log
// lines everywhere else.
package progress

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter tracks one phase at a time
type Reporter interface {
	Start(phase string, total int)
	Advance()
	Finish()
}

// New picks a bar when w is a terminal and log lines otherwise
func New(w io.Writer, logger *slog.Logger) Reporter {
	if IsTerminal(w) {
		return &barReporter{w: w}
	}
	return &logReporter{logger: logger}
}

// IsTerminal reports whether w writes to an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type barReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (r *barReporter) Start(phase string, total int) {
	r.Finish()
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(phase),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Advance() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// logReporter logs every tenth of a phase so long runs stay visible in
// non-interactive logs
type logReporter struct {
	logger *slog.Logger
	phase  string
	total  int
	done   int
	step   int
}

func (r *logReporter) Start(phase string, total int) {
	r.phase, r.total, r.done = phase, total, 0
	r.step = max(total/10, 1)
	r.logger.Info("phase started", "phase", phase, "total", total)
}

func (r *logReporter) Advance() {
	r.done++
	if r.done%r.step == 0 && r.done < r.total {
		r.logger.Info("phase progress", "phase", r.phase, "done", r.done, "total", r.total)
	}
}

func (r *logReporter) Finish() {
	if r.phase == "" {
		return
	}
	r.logger.Info("phase finished", "phase", r.phase, "done", r.done)
	r.phase = ""
}

// Discard ignores all progress
type Discard struct{}

func (Discard) Start(string, int) {}
func (Discard) Advance()          {}
func (Discard) Finish()           {}
