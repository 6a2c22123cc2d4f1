package scopetimer

import (
	"github.com/phuslu/log"

	"github.com/skst328/scope-timer/internal/config"
	"github.com/skst328/scope-timer/internal/render"
	"github.com/skst328/scope-timer/internal/report"
	"github.com/skst328/scope-timer/internal/stack"
	"github.com/skst328/scope-timer/internal/trace"
)

// Unit is the time unit of a report.
type Unit = report.Unit

const (
	UnitAuto        = report.UnitAuto
	UnitSecond      = report.UnitSecond
	UnitMillisecond = report.UnitMillisecond
	UnitMicrosecond = report.UnitMicrosecond
)

// Divider selects what separates top-level scopes in text output.
type Divider = render.Divider

const (
	DividerRule  = render.DividerRule
	DividerBlank = render.DividerBlank
)

// Clock supplies timestamps. A zero time.Time is reported as a ClockError.
type Clock = stack.Clock

// Tracer receives scope enter/exit events.
type Tracer = trace.Tracer

// outputConfig holds the report and render knobs shared by Summarize,
// Fprint and the Save functions.
type outputConfig struct {
	unit       report.Unit
	precision  int
	divider    render.Divider
	dividerSet bool
	verbose    bool
	color      bool
	colorSet   bool
}

func (c outputConfig) reportOptions() report.Options {
	return report.Options{Unit: c.unit, Precision: c.precision, Verbose: c.verbose}
}

// Option adjusts one report rendering.
type Option func(*outputConfig)

// WithUnit fixes the time unit instead of inferring it.
func WithUnit(u Unit) Option {
	return func(c *outputConfig) { c.unit = u }
}

// WithPrecision fixes the number of decimals. Negative values select auto.
func WithPrecision(n int) Option {
	return func(c *outputConfig) {
		if n < 0 {
			n = report.PrecisionAuto
		}
		c.precision = n
	}
}

// WithAutoPrecision infers the number of decimals from the largest root.
func WithAutoPrecision() Option {
	return WithPrecision(report.PrecisionAuto)
}

// WithDivider sets the separator between top-level scopes.
func WithDivider(d Divider) Option {
	return func(c *outputConfig) {
		c.divider = d
		c.dividerSet = true
	}
}

// WithVerbose adds min, max, mean and variance to every row.
func WithVerbose(v bool) Option {
	return func(c *outputConfig) { c.verbose = v }
}

// WithColor forces colored output on or off. By default Summarize colors
// only when stdout is a terminal and Fprint never colors.
func WithColor(on bool) Option {
	return func(c *outputConfig) {
		c.color = on
		c.colorSet = true
	}
}

// TimerOption configures a Timer built by New.
type TimerOption func(*Timer)

// WithClock replaces the system clock.
func WithClock(c Clock) TimerOption {
	return func(t *Timer) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithEnabled sets the initial enable switch. New defaults to enabled.
func WithEnabled(on bool) TimerOption {
	return func(t *Timer) { t.enabled.Store(on) }
}

// WithTracer attaches a tracer that receives every scope event.
func WithTracer(tr Tracer) TimerOption {
	return func(t *Timer) {
		if tr != nil {
			t.tracer = tr
		}
	}
}

// WithLogger replaces the diagnostic logger.
func WithLogger(l *log.Logger) TimerOption {
	return func(t *Timer) {
		if l != nil {
			t.log = l
		}
	}
}

// WithSettings sets the report defaults, usually loaded from scopetimer.toml.
func WithSettings(s config.Settings) TimerOption {
	return func(t *Timer) {
		t.defaults = outputConfig{
			unit:      s.Unit,
			precision: s.Precision,
			divider:   s.Divider,
			verbose:   s.Verbose,
		}
	}
}

// WithDefaults applies report options to every rendering of the Timer.
// Per-call options still take precedence.
func WithDefaults(opts ...Option) TimerOption {
	return func(t *Timer) {
		for _, o := range opts {
			o(&t.defaults)
		}
	}
}
