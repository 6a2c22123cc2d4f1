package scopetimer

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"

	"github.com/skst328/scope-timer/internal/config"
	"github.com/skst328/scope-timer/internal/logger"
	"github.com/skst328/scope-timer/internal/report"
	"github.com/skst328/scope-timer/internal/stack"
	"github.com/skst328/scope-timer/internal/trace"
	"github.com/skst328/scope-timer/internal/tree"
)

// recentOnMismatch is how many ring events of the offending goroutine are
// logged with a scope mismatch.
const recentOnMismatch = 16

// Timer records scopes from any number of goroutines into one aggregation
// tree. All methods are safe for concurrent use.
type Timer struct {
	enabled  atomic.Bool
	clock    Clock
	tree     *tree.Tree
	stacks   *stack.Registry
	tracer   trace.Tracer
	log      *log.Logger
	defaults outputConfig
}

// New returns an enabled Timer with built-in report defaults.
func New(opts ...TimerOption) *Timer {
	t := &Timer{
		clock:  stack.SystemClock,
		tree:   tree.New(),
		stacks: stack.NewRegistry(),
		tracer: trace.Nop,
		log:    logger.Discard(),
	}
	t.enabled.Store(true)
	t.defaults = outputConfig{
		unit:      report.UnitAuto,
		precision: report.PrecisionAuto,
		divider:   DividerRule,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

var (
	defaultOnce  sync.Once
	defaultTimer *Timer
)

// Default returns the process-wide Timer used by the package-level
// functions. It is built on first use from SCOPE_TIMER_ENABLE,
// SCOPE_TIMER_LOG_LEVEL and the nearest scopetimer.toml.
func Default() *Timer {
	defaultOnce.Do(func() {
		defaultTimer = newFromEnvironment()
	})
	return defaultTimer
}

func newFromEnvironment() *Timer {
	settings, cfgErr := config.Load(".")
	level := settings.LogLevel
	if env, ok := os.LookupEnv(config.EnvLogLevel); ok {
		level = env
	}
	l := logger.New(logger.Options{Level: level, Module: "scopetimer"})
	if cfgErr != nil {
		l.Warn().Err(cfgErr).Msg("ignoring scopetimer config")
	} else if settings.Source != "" {
		l.Debug().Str("path", settings.Source).Msg("loaded scopetimer config")
	}

	enabled, envErr := config.Enabled()
	if envErr != nil {
		l.Warn().Err(envErr).Msg("timer stays enabled")
	}
	return New(WithEnabled(enabled), WithSettings(settings), WithLogger(l))
}

// Enabled reports whether the timer records scopes.
func (t *Timer) Enabled() bool {
	return t.enabled.Load()
}

// SetEnabled switches recording on or off. Scopes already open stay on
// their stacks and are reported as unclosed if never exited.
func (t *Timer) SetEnabled(on bool) {
	t.enabled.Store(on)
}

// Enter opens scope name on the calling goroutine.
func (t *Timer) Enter(name string) error {
	if !t.enabled.Load() {
		return nil
	}
	now := t.clock.Now()
	if now.IsZero() {
		err := &ClockError{Scope: name}
		t.log.Debug().Err(err).Msg("enter failed")
		return err
	}
	gid := stack.GoroutineID()
	s := t.stacks.Acquire(gid)
	s.Push(name, now)
	if t.tracer.Enabled() {
		t.tracer.Emit(&trace.Event{Time: now, Kind: trace.KindEnter, GID: gid, Depth: s.Depth(), Name: name})
	}
	return nil
}

// Exit closes scope name, which must be the innermost open scope of the
// calling goroutine, and merges its duration into the tree. On error nothing
// is recorded and the stack is left as it was.
func (t *Timer) Exit(name string) error {
	if !t.enabled.Load() {
		return nil
	}
	now := t.clock.Now()
	gid := stack.GoroutineID()
	s := t.stacks.Lookup(gid)
	if s == nil {
		return t.mismatch(gid, &ScopeMismatchError{Got: name}, now)
	}
	if now.IsZero() {
		err := &ClockError{Scope: name}
		t.log.Debug().Err(err).Msg("exit failed")
		return err
	}
	m, err := s.Pop(name, now)
	if err != nil {
		return t.mismatch(gid, err, now)
	}
	t.tree.Record(m)
	if t.tracer.Enabled() {
		t.tracer.Emit(&trace.Event{Time: now, Kind: trace.KindExit, GID: gid, Depth: s.Depth(), Name: name, Elapsed: m.Elapsed})
	}
	t.stacks.Release(s)
	return nil
}

func (t *Timer) mismatch(gid uint64, err error, now time.Time) error {
	mm, _ := err.(*ScopeMismatchError)
	if t.tracer.Enabled() && mm != nil {
		t.tracer.Emit(&trace.Event{Time: now, Kind: trace.KindMismatch, GID: gid, Depth: mm.Depth, Name: mm.Got, Expected: mm.Expected})
	}
	if e := t.log.Debug(); e != nil {
		e = e.Err(err).Uint64("goroutine", gid)
		if ring := trace.RingOf(t.tracer); ring != nil {
			recent := ring.Recent(gid, recentOnMismatch)
			lines := make([]string, 0, len(recent))
			for i := range recent {
				lines = append(lines, strings.TrimSuffix(string(trace.FormatEvent(&recent[i], trace.FormatText)), "\n"))
			}
			e = e.Strs("recent", lines)
		}
		e.Msg("scope mismatch")
	}
	return err
}

// Reset discards every recorded measurement and every open scope of every
// goroutine. Regions opened before the reset end silently.
func (t *Timer) Reset() {
	t.tree.Reset()
	t.stacks.Reset()
	if t.tracer.Enabled() {
		t.tracer.Emit(&trace.Event{Time: t.clock.Now(), Kind: trace.KindReset, GID: stack.GoroutineID()})
	}
}

// Depth returns the number of scopes open on the calling goroutine.
func (t *Timer) Depth() int {
	if s := t.stacks.Lookup(stack.GoroutineID()); s != nil {
		return s.Depth()
	}
	return 0
}

// Enter opens scope name on the default Timer.
func Enter(name string) error { return Default().Enter(name) }

// Exit closes scope name on the default Timer.
func Exit(name string) error { return Default().Exit(name) }

// Reset clears the default Timer.
func Reset() { Default().Reset() }
