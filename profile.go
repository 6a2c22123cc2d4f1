package scopetimer

import (
	"errors"
	"reflect"
	"runtime"
	"strings"
)

// Region is an open scope returned by Profile. End closes it; the usual
// form is
//
//	defer t.Profile("load").End()
type Region struct {
	t      *Timer
	name   string
	gen    uint64
	err    error
	active bool
}

// disabledRegion is shared by every Profile call made while recording is off.
// It is never written to.
var disabledRegion = &Region{}

// Profile opens scope name and returns the Region that closes it. If the
// scope could not be opened, End returns that error instead. While the timer
// is disabled it returns a shared inert Region without allocating.
func (t *Timer) Profile(name string) *Region {
	if !t.enabled.Load() {
		return disabledRegion
	}
	r := &Region{t: t, name: name, gen: t.stacks.Generation()}
	if err := t.Enter(name); err != nil {
		r.err = err
		return r
	}
	r.active = true
	return r
}

// Name returns the scope name, or "" for a Region opened while disabled.
func (r *Region) Name() string { return r.name }

// End closes the region. Only the first call has an effect. A region whose
// timer was Reset after it was opened ends without recording anything.
func (r *Region) End() error {
	if r == nil {
		return nil
	}
	if !r.active {
		if r.err == nil {
			return nil
		}
		err := r.err
		r.err = nil
		return err
	}
	r.active = false
	if r.t.stacks.Generation() != r.gen {
		return nil
	}
	return r.t.Exit(r.name)
}

// Wrap runs fn inside scope name. An empty name uses fn's function name.
// The scope is closed even if fn panics; an Exit error is joined with fn's.
func (t *Timer) Wrap(name string, fn func() error) (err error) {
	if name == "" {
		name = FuncName(fn)
	}
	if err := t.Enter(name); err != nil {
		return err
	}
	defer func() {
		if exitErr := t.Exit(name); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
	}()
	return fn()
}

// WrapFunc returns a function that runs fn inside a scope named after fn.
// Enter and Exit errors are logged, since the wrapper has no error result.
func (t *Timer) WrapFunc(fn func()) func() {
	name := FuncName(fn)
	return func() {
		if err := t.Enter(name); err != nil {
			t.log.Warn().Err(err).Str("scope", name).Msg("wrapped function runs untimed")
			fn()
			return
		}
		defer func() {
			if err := t.Exit(name); err != nil {
				t.log.Warn().Err(err).Str("scope", name).Msg("wrapped function exit failed")
			}
		}()
		fn()
	}
}

// FuncName returns the short name of the function fn points to, e.g.
// "loadData" or "(*Loader).Run", or "" when fn is not a function.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

// Profile opens scope name on the default Timer.
func Profile(name string) *Region { return Default().Profile(name) }

// Wrap runs fn inside scope name on the default Timer.
func Wrap(name string, fn func() error) error { return Default().Wrap(name, fn) }

// WrapFunc wraps fn in a scope on the default Timer.
func WrapFunc(fn func()) func() { return Default().WrapFunc(fn) }
