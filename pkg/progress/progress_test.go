package progress

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUsesLogsOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := New(&buf, logger)
	_, isLog := r.(*logReporter)
	assert.True(t, isLog)
	assert.False(t, IsTerminal(&buf))
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &logReporter{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	r.Start("encode", 20)
	for i := 0; i < 20; i++ {
		r.Advance()
	}
	r.Finish()
	r.Finish()

	out := buf.String()
	assert.Contains(t, out, "phase=encode")
	assert.Equal(t, 9, strings.Count(out, "phase progress"))
	assert.Equal(t, 1, strings.Count(out, "phase finished"))
}

func TestBarReporterWithoutStart(t *testing.T) {
	r := &barReporter{w: &bytes.Buffer{}}
	r.Advance()
	r.Finish()

	r.Start("scan", 2)
	r.Advance()
	r.Advance()
	r.Finish()
	assert.Nil(t, r.bar)
}
