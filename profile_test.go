package scopetimer

import (
	"errors"
	"testing"
	"time"
)

func loadData() {}

type loader struct{}

func (*loader) Run() {}

func TestFuncName(t *testing.T) {
	l := &loader{}
	tests := []struct {
		fn   any
		want string
	}{
		{loadData, "loadData"},
		{l.Run, "(*loader).Run"},
		{nil, ""},
		{42, ""},
	}
	for _, tt := range tests {
		if got := FuncName(tt.fn); got != tt.want {
			t.Errorf("FuncName(%T) = %q, want %q", tt.fn, got, tt.want)
		}
	}
}

func TestProfileRegion(t *testing.T) {
	clk := newFakeClock()
	tm := New(WithClock(clk))

	func() {
		defer tm.Profile("outer").End()
		r := tm.Profile("inner")
		clk.Advance(2 * time.Millisecond)
		must(t, r.End())
		must(t, r.End()) // second End is a no-op
	}()

	inner, ok := tm.tree.Lookup([]string{"outer", "inner"})
	if !ok || inner.Count != 1 || inner.Total != 2*time.Millisecond {
		t.Errorf("inner = %+v", inner)
	}
	if outer, _ := tm.tree.Lookup([]string{"outer"}); outer.Count != 1 {
		t.Errorf("outer = %+v", outer)
	}
}

func TestProfileClosesOnPanic(t *testing.T) {
	tm := New(WithClock(newFakeClock()))
	func() {
		defer func() { _ = recover() }()
		defer tm.Profile("boom").End()
		panic("fail")
	}()
	if acc, _ := tm.tree.Lookup([]string{"boom"}); acc.Count != 1 {
		t.Errorf("boom count = %d, want 1", acc.Count)
	}
	if tm.Depth() != 0 {
		t.Errorf("depth = %d after panic", tm.Depth())
	}
}

func TestRegionEndAfterReset(t *testing.T) {
	tm := New(WithClock(newFakeClock()))
	r := tm.Profile("stale")
	tm.Reset()
	if err := r.End(); err != nil {
		t.Errorf("End after Reset = %v", err)
	}
	if tm.tree.Len() != 0 {
		t.Error("stale region recorded a measurement")
	}
}

func TestRegionReportsEnterError(t *testing.T) {
	tm := New(WithClock(zeroClock{}))
	r := tm.Profile("x")
	if err := r.End(); !errors.Is(err, ErrClock) {
		t.Errorf("End = %v, want ErrClock", err)
	}
	if err := r.End(); err != nil {
		t.Errorf("second End = %v", err)
	}
}

func TestWrap(t *testing.T) {
	clk := newFakeClock()
	tm := New(WithClock(clk))
	sentinel := errors.New("work failed")

	err := tm.Wrap("work", func() error {
		clk.Advance(time.Millisecond)
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Wrap = %v", err)
	}
	if acc, _ := tm.tree.Lookup([]string{"work"}); acc.Count != 1 || acc.Total != time.Millisecond {
		t.Errorf("work = %+v", acc)
	}

	// the inner function leaves a scope open, so the wrapper's Exit fails
	err = tm.Wrap("leaky", func() error { return tm.Enter("dangling") })
	if !errors.Is(err, ErrScopeMismatch) {
		t.Errorf("Wrap(leaky) = %v, want ErrScopeMismatch", err)
	}
}

func TestWrapInfersName(t *testing.T) {
	tm := New(WithClock(newFakeClock()))
	must(t, tm.Wrap("", func() error { return nil }))
	snap := tm.tree.Snapshot()
	if len(snap.Roots) != 1 || snap.Roots[0].Name != "TestWrapInfersName.func1" {
		t.Errorf("roots = %+v", snap.Roots)
	}
}

func TestWrapFunc(t *testing.T) {
	tm := New(WithClock(newFakeClock()))
	wrapped := tm.WrapFunc(loadData)
	for range 3 {
		wrapped()
	}
	if acc, _ := tm.tree.Lookup([]string{"loadData"}); acc.Count != 3 {
		t.Errorf("loadData count = %d, want 3", acc.Count)
	}
}

func TestProfileDisabledDoesNotAllocate(t *testing.T) {
	tm := New(WithClock(newFakeClock()), WithEnabled(false))
	allocs := testing.AllocsPerRun(100, func() {
		_ = tm.Profile("x").End()
	})
	if allocs != 0 {
		t.Errorf("disabled Profile allocates %v times per call", allocs)
	}
	if r := tm.Profile("x"); r.Name() != "" || r.End() != nil {
		t.Errorf("disabled region = %+v", r)
	}
	if tm.tree.Len() != 0 {
		t.Error("disabled region recorded a measurement")
	}
}
