// Package logger builds the phuslu/log loggers used by the timer and the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/phuslu/log"
)

// ParseLevel converts a level name to log.Level. Unknown names fall back to
// warn and return an error.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "", "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	case "off", "none":
		return log.PanicLevel + 1, nil
	default:
		return log.WarnLevel, fmt.Errorf("invalid log level %q (expected: trace|debug|info|warn|error|off)", s)
	}
}

// Options configures New.
type Options struct {
	Level  string
	Writer io.Writer // defaults to os.Stderr
	Color  bool
	Module string
}

// New returns a console logger writing to opts.Writer. Invalid levels are
// reported with a warning through the returned logger itself.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level, levelErr := ParseLevel(opts.Level)
	l := &log.Logger{
		Level: level,
		Writer: &safeWriter{w: &log.ConsoleWriter{
			ColorOutput:    opts.Color,
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         w,
		}},
	}
	if opts.Module != "" {
		l.Context = log.NewContext(nil).Str("module", opts.Module).Value()
	}
	if levelErr != nil {
		l.Warn().Err(levelErr).Msg("using default log level")
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel + 1,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

// safeWriter serializes WriteEntry calls on the console writer.
type safeWriter struct {
	mu sync.Mutex
	w  log.Writer
}

func (sw *safeWriter) WriteEntry(e *log.Entry) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.WriteEntry(e)
}
