// Package stack holds the per-goroutine stacks of open scopes.
//
// A Stack is owned by exactly one goroutine and is not safe for concurrent
// use; the Registry maps goroutine IDs to their stacks.
package stack

import (
	"context"
	rtrace "runtime/trace"
	"slices"
	"time"

	"github.com/skst328/scope-timer/internal/tree"
)

// Clock supplies monotonic timestamps. A zero time means the clock is
// unavailable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now, which carries a monotonic reading.
var SystemClock Clock = systemClock{}

// Frame is one open scope.
type Frame struct {
	Name   string
	Start  time.Time
	key    string
	region *rtrace.Region
}

// Stack is the ordered list of scopes currently open on one goroutine.
type Stack struct {
	gid    uint64
	frames []Frame
	// names mirrors frames so a completed path can be handed to the tree
	// without allocating.
	names []string
}

func newStack(gid uint64) *Stack {
	return &Stack{
		gid:    gid,
		frames: make([]Frame, 0, 8),
		names:  make([]string, 0, 8),
	}
}

// Depth returns the number of open scopes.
func (s *Stack) Depth() int { return len(s.frames) }

// Names returns a copy of the open scope names, outermost first.
func (s *Stack) Names() []string {
	return slices.Clone(s.names)
}

// Push opens a scope that started at now. When a runtime execution trace is
// being recorded the scope is mirrored as a trace region.
func (s *Stack) Push(name string, now time.Time) {
	parent := ""
	if n := len(s.frames); n > 0 {
		parent = s.frames[n-1].key
	}
	f := Frame{Name: name, Start: now, key: tree.AppendKey(parent, name)}
	if rtrace.IsEnabled() {
		f.region = rtrace.StartRegion(context.Background(), name)
	}
	s.frames = append(s.frames, f)
	s.names = append(s.names, name)
}

// Pop closes the innermost scope, which must be called name. On mismatch the
// stack is left untouched. The returned measurement's Path aliases the
// stack's buffer and is only valid until the next Push.
func (s *Stack) Pop(name string, now time.Time) (tree.Measurement, error) {
	n := len(s.frames)
	if n == 0 {
		return tree.Measurement{}, &ScopeMismatchError{Got: name}
	}
	top := &s.frames[n-1]
	if top.Name != name {
		return tree.Measurement{}, &ScopeMismatchError{Expected: top.Name, Got: name, Depth: n}
	}
	if top.region != nil {
		top.region.End()
	}
	elapsed := now.Sub(top.Start)
	if elapsed < 0 {
		elapsed = 0
	}
	m := tree.Measurement{
		Key:     top.key,
		Path:    s.names[:n],
		Elapsed: elapsed,
	}
	s.frames[n-1] = Frame{}
	s.frames = s.frames[:n-1]
	s.names = s.names[:n-1]
	return m, nil
}
