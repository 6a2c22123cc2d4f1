package scopetimer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/skst328/scope-timer/internal/metrics"
	"github.com/skst328/scope-timer/internal/render"
	"github.com/skst328/scope-timer/internal/report"
	"github.com/skst328/scope-timer/internal/stack"
	"github.com/skst328/scope-timer/internal/tree"
	"github.com/skst328/scope-timer/internal/version"
)

func (t *Timer) resolve(opts []Option) outputConfig {
	c := t.defaults
	for _, o := range opts {
		o(&c)
	}
	return c
}

// openScopes lists the calling goroutine's open scopes, outermost first.
// Other goroutines' stacks are owned by them and are not inspected.
func (t *Timer) openScopes() []report.OpenScope {
	gid := stack.GoroutineID()
	s := t.stacks.Lookup(gid)
	if s == nil || s.Depth() == 0 {
		return nil
	}
	names := s.Names()
	open := make([]report.OpenScope, len(names))
	for i := range names {
		open[i] = report.OpenScope{Goroutine: gid, Path: names[:i+1]}
	}
	return open
}

func (t *Timer) build(c outputConfig) *report.Report {
	open := t.openScopes()
	for _, o := range open {
		t.log.Warn().Str("scope", o.Name()).Uint64("goroutine", o.Goroutine).Msg("unclosed scope excluded from report")
	}
	return report.Build(t.tree.Snapshot(), c.reportOptions(), open)
}

// Fprint writes the summary to w, uncolored unless WithColor(true).
func (t *Timer) Fprint(w io.Writer, opts ...Option) error {
	c := t.resolve(opts)
	return render.Console(w, t.build(c), render.Style{Divider: c.divider, Color: c.color})
}

// Summarize prints the summary to stdout, colored when stdout is a terminal.
func (t *Timer) Summarize(opts ...Option) error {
	c := t.resolve(opts)
	if !c.colorSet {
		c.color = isTerminal(os.Stdout)
	}
	return render.Console(os.Stdout, t.build(c), render.Style{Divider: c.divider, Color: c.color})
}

// SaveText writes the uncolored summary to path. Saved files separate roots
// with blank lines unless WithDivider is given.
func (t *Timer) SaveText(path string, opts ...Option) error {
	c := t.resolve(opts)
	if !c.dividerSet {
		c.divider = DividerBlank
	}
	rep := t.build(c)
	return t.writeFile(path, func(w io.Writer) error {
		return render.Text(w, rep, c.divider)
	})
}

// SaveHTML writes the summary as a standalone HTML page.
func (t *Timer) SaveHTML(path string, opts ...Option) error {
	rep := t.build(t.resolve(opts))
	return t.writeFile(path, func(w io.Writer) error {
		return render.HTML(w, rep, version.Version)
	})
}

// SaveSnapshot writes the raw aggregation tree (paths and accumulator
// fields) as msgpack.
func (t *Timer) SaveSnapshot(path string) error {
	snap := t.tree.Snapshot()
	return t.writeFile(path, func(w io.Writer) error {
		return render.Snapshot(w, snap, version.Version)
	})
}

// Collector exports the timer's statistics as Prometheus metrics.
func (t *Timer) Collector() prometheus.Collector {
	return metrics.NewCollector(t.snapshot, nil)
}

func (t *Timer) snapshot() *tree.Snapshot {
	return t.tree.Snapshot()
}

func (t *Timer) writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	t.log.Info().Str("path", path).Msg("saved report")
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Summarize prints the default Timer's summary to stdout.
func Summarize(opts ...Option) error { return Default().Summarize(opts...) }

// Fprint writes the default Timer's summary to w.
func Fprint(w io.Writer, opts ...Option) error { return Default().Fprint(w, opts...) }

// SaveText saves the default Timer's summary as plain text.
func SaveText(path string, opts ...Option) error { return Default().SaveText(path, opts...) }

// SaveHTML saves the default Timer's summary as HTML.
func SaveHTML(path string, opts ...Option) error { return Default().SaveHTML(path, opts...) }

// SaveSnapshot saves the default Timer's tree as msgpack.
func SaveSnapshot(path string) error { return Default().SaveSnapshot(path) }
